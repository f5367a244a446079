package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hazadus/go-wavemark/internal/config"
	"github.com/hazadus/go-wavemark/internal/export"
	"github.com/hazadus/go-wavemark/internal/s3"
)

const (
	defaultConfigPath = "~/.wavemark"
)

// Application хранит состояние приложения, общее для всех команд
type Application struct {
	Config     *config.Config
	configPath string
	exportDir  string
	stretch    int
	tempo      float64
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	app := &Application{}
	rootCmd := app.createRootCommand(ctx)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Println(err)
		os.Exit(1)
	}
	stop()
}

// newExporter создает сервис экспорта: файл в каталоге экспорта и, если настроено, S3
func (app *Application) newExporter() (*export.Service, error) {
	sinks := []export.Sink{export.FileSink{Dir: app.Config.ExportDir}}

	if app.Config.S3Enabled() {
		uploader, err := s3.NewUploader(&s3.Config{
			Region:     app.Config.AwsRegion,
			AccessKey:  app.Config.AwsAccessKey,
			SecretKey:  app.Config.AwsSecretKey,
			Endpoint:   app.Config.AwsEndpoint,
			BucketName: app.Config.AwsBucketName,
		})
		if err != nil {
			return nil, fmt.Errorf("ошибка создания S3 uploader: %w", err)
		}
		sinks = append(sinks, export.NewS3Sink(uploader, ""))
	}

	return export.NewService(sinks...), nil
}
