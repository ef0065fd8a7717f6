// Command richmenu bootstraps the bot's rich menu: it registers the menu
// definition, uploads the menu image, and links the menu to all users.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"time"

	"github.com/joho/godotenv"

	appconfig "github.com/wenlinc/line-todo-bot/internal/config"
	"github.com/wenlinc/line-todo-bot/internal/lineapi"
	"github.com/wenlinc/line-todo-bot/pkg/logging"
)

func main() {
	menuPath := flag.String("menu", "richmenu.json", "path to the rich menu definition")
	imagePath := flag.String("image", "richmenu.png", "path to the rich menu image")
	contentType := flag.String("content-type", "image/png", "content type of the menu image")
	flag.Parse()

	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	client, err := lineapi.New(lineapi.Config{
		BaseURL:            cfg.LineAPIBaseURL,
		DataBaseURL:        cfg.LineDataAPIBaseURL,
		ChannelAccessToken: cfg.ChannelAccessToken,
		Timeout:            30 * time.Second,
		Logger:             logger.Logger,
	})
	if err != nil {
		logger.Error("failed to build LINE client", "error", err)
		os.Exit(1)
	}

	menuData, err := os.ReadFile(*menuPath)
	if err != nil {
		logger.Error("failed to read rich menu definition", "error", err, "path", *menuPath)
		os.Exit(1)
	}
	var menu lineapi.RichMenu
	if err := json.Unmarshal(menuData, &menu); err != nil {
		logger.Error("invalid rich menu definition", "error", err, "path", *menuPath)
		os.Exit(1)
	}

	image, err := os.ReadFile(*imagePath)
	if err != nil {
		logger.Error("failed to read rich menu image", "error", err, "path", *imagePath)
		os.Exit(1)
	}

	ctx := context.Background()

	id, err := client.CreateRichMenu(ctx, menu)
	if err != nil {
		logger.Error("failed to create rich menu", "error", err)
		os.Exit(1)
	}
	logger.Info("rich menu created", "rich_menu_id", id)

	if err := client.UploadRichMenuImage(ctx, id, *contentType, image); err != nil {
		logger.Error("failed to upload rich menu image", "error", err)
		os.Exit(1)
	}
	logger.Info("rich menu image uploaded", "rich_menu_id", id)

	if err := client.SetDefaultRichMenu(ctx, id); err != nil {
		logger.Error("failed to set default rich menu", "error", err)
		os.Exit(1)
	}
	logger.Info("rich menu linked to all users", "rich_menu_id", id)
}
