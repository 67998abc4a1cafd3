// Package wheel — catalog.go загружает таблицу призов из файла через viper.
package wheel

import (
	"fmt"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"serotonyl.ru/wallet-bot/internal/luckywheel"
)

type prizeFile struct {
	Prizes []prizeEntry `mapstructure:"prizes"`
}

type prizeEntry struct {
	ID     int     `mapstructure:"id"`
	Name   string  `mapstructure:"name"`
	Value  string  `mapstructure:"value"`
	Weight float64 `mapstructure:"weight"`
	Tag    string  `mapstructure:"tag"`
	Emoji  string  `mapstructure:"emoji"`
	Color  string  `mapstructure:"color"`
}

// defaultEntries — дневное колесо: шесть секторов, веса в сумме 100.
var defaultEntries = []prizeEntry{
	{ID: 1, Name: "Энергия", Value: "100", Weight: 10, Tag: "energy"},
	{ID: 2, Name: "Энергия", Value: "50", Weight: 20, Tag: "energy"},
	{ID: 3, Name: "Энергия", Value: "30", Weight: 25, Tag: "energy"},
	{ID: 4, Name: "Удача", Value: "20", Weight: 15, Tag: "luck"},
	{ID: 5, Name: "Удача", Value: "10", Weight: 20, Tag: "luck"},
	{ID: 6, Name: "Опыт", Value: "50", Weight: 10, Tag: "experience"},
}

// DefaultCatalog — встроенная таблица призов.
func DefaultCatalog() *Catalog {
	cat, err := buildCatalog(defaultEntries)
	if err != nil {
		panic(fmt.Sprintf("встроенная таблица призов некорректна: %v", err))
	}
	return cat
}

// LoadCatalog читает таблицу призов из файла (yaml, json, toml — по расширению).
// Пустой путь — встроенная таблица. Ошибки таблицы оборачивают luckywheel.ErrConfiguration.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("не удалось прочитать %s: %w", path, err)
	}

	var f prizeFile
	if err := v.Unmarshal(&f); err != nil {
		return nil, fmt.Errorf("не удалось разобрать %s: %w", path, err)
	}

	cat, err := buildCatalog(f.Prizes)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	log.WithFields(log.Fields{
		"file":   path,
		"prizes": cat.Table.Len(),
	}).Info("Таблица призов загружена")
	return cat, nil
}

func buildCatalog(entries []prizeEntry) (*Catalog, error) {
	prizes := make([]luckywheel.Prize, 0, len(entries))
	decor := make(map[int]Decoration, len(entries))

	for _, e := range entries {
		value, err := decimal.NewFromString(e.Value)
		if err != nil {
			return nil, fmt.Errorf("%w: приз id=%d: значение %q: %v", luckywheel.ErrConfiguration, e.ID, e.Value, err)
		}
		prizes = append(prizes, luckywheel.Prize{
			ID:     e.ID,
			Name:   e.Name,
			Value:  value,
			Weight: e.Weight,
			Tag:    luckywheel.VisualTag(e.Tag),
		})
		if e.Emoji != "" || e.Color != "" {
			decor[e.ID] = Decoration{Emoji: e.Emoji, Color: e.Color}
		}
	}

	table, err := luckywheel.NewPrizeTable(prizes)
	if err != nil {
		return nil, err
	}
	return &Catalog{Table: table, Decor: decor}, nil
}
