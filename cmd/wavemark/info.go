package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/hazadus/go-wavemark/internal/metadata"
	"github.com/hazadus/go-wavemark/internal/utils"
)

// createInfoCommand создает команду info с привязкой к экземпляру приложения
func (app *Application) createInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info [audio file]",
		Short: "Show metadata and duration of an audio file",
		Long:  `Print title, artist, album, duration and size of a local mp3/wav file.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return app.showInfo(args[0])
		},
	}
}

func (app *Application) showInfo(path string) error {
	extractor := metadata.NewExtractor()

	info, err := extractor.GetFileInfo(path)
	if err != nil {
		return err
	}
	track := extractor.ExtractFromFile(path)

	fmt.Printf("🎵 Файл: %s\n", path)
	fmt.Printf("   Исполнитель: %s\n", track.Artist)
	fmt.Printf("   Название: %s\n", track.Title)
	if track.Album != "" {
		fmt.Printf("   Альбом: %s\n", track.Album)
	}
	fmt.Printf("   Продолжительность: %s\n", utils.FormatDuration(info.Duration))
	fmt.Printf("   Размер: %s\n", humanize.Bytes(uint64(info.Size)))
	fmt.Printf("   Название для экспорта: %s\n", track.SongLabel())

	return nil
}
