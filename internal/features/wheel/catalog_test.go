package wheel

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"serotonyl.ru/wallet-bot/internal/luckywheel"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestDefaultCatalog(t *testing.T) {
	cat := DefaultCatalog()
	if cat.Table.Len() != 6 {
		t.Fatalf("Expected 6 sectors, got %d", cat.Table.Len())
	}
	if cat.Table.TotalWeight() != 100 {
		t.Errorf("Expected total weight 100, got %v", cat.Table.TotalWeight())
	}
	first := cat.Table.At(0)
	if first.Name != "Энергия" || first.Value.String() != "100" {
		t.Errorf("unexpected first prize: %+v", first)
	}
}

func TestLoadCatalogEmptyPath(t *testing.T) {
	cat, err := LoadCatalog("")
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	if cat.Table.Len() != DefaultCatalog().Table.Len() {
		t.Error("empty path must give the built-in table")
	}
}

func TestLoadCatalogYAML(t *testing.T) {
	path := writeFile(t, "prizes.yaml", `
prizes:
  - id: 10
    name: Монеты
    value: "12.5"
    weight: 3
    tag: energy
    emoji: "🪙"
  - id: 11
    name: Опыт
    value: 40
    weight: 1
    tag: experience
    color: "#123456"
`)

	cat, err := LoadCatalog(path)
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	if cat.Table.Len() != 2 {
		t.Fatalf("Expected 2 prizes, got %d", cat.Table.Len())
	}

	coins := cat.Table.At(0)
	if coins.Value.String() != "12.5" || coins.Weight != 3 {
		t.Errorf("unexpected prize: %+v", coins)
	}
	if d := cat.DecorationFor(coins); d.Emoji != "🪙" || d.Color != "#facc15" {
		t.Errorf("unexpected decoration: %+v", d)
	}

	xp := cat.Table.At(1)
	if xp.Value.String() != "40" {
		t.Errorf("numeric value must decode, got %s", xp.Value)
	}
	if d := cat.DecorationFor(xp); d.Emoji != "📈" || d.Color != "#123456" {
		t.Errorf("unexpected decoration: %+v", d)
	}
}

func TestLoadCatalogErrors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		config bool
	}{
		{
			name:   "empty table",
			body:   "prizes: []\n",
			config: true,
		},
		{
			name:   "zero weight",
			body:   "prizes:\n  - {id: 1, name: A, value: \"1\", weight: 0, tag: energy}\n",
			config: true,
		},
		{
			name:   "bad value",
			body:   "prizes:\n  - {id: 1, name: A, value: abc, weight: 1, tag: energy}\n",
			config: true,
		},
		{
			name:   "unknown tag",
			body:   "prizes:\n  - {id: 1, name: A, value: \"1\", weight: 1, tag: gold}\n",
			config: true,
		},
		{
			name: "broken yaml",
			body: "prizes: [\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadCatalog(writeFile(t, "prizes.yaml", tt.body))
			if err == nil {
				t.Fatal("Expected error")
			}
			if got := errors.Is(err, luckywheel.ErrConfiguration); got != tt.config {
				t.Errorf("errors.Is(ErrConfiguration) = %v, want %v (%v)", got, tt.config, err)
			}
		})
	}
}

func TestLoadCatalogMissingFile(t *testing.T) {
	if _, err := LoadCatalog(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Expected error for a missing file")
	}
}
