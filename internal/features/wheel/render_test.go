package wheel

import (
	"strings"
	"testing"

	"serotonyl.ru/wallet-bot/internal/luckywheel"
)

func TestRenderIdle(t *testing.T) {
	cat := DefaultCatalog()
	text := Render(luckywheel.Snapshot{State: luckywheel.StateIdle, QuotaRemaining: 3}, cat)

	for _, want := range []string{
		"🎡 КОЛЕСО УДАЧИ 🎡",
		"✨10 📈50 [⚡100] ⚡50 ⚡30",
		"Нажми «Крутить»!",
		"Осталось 3 спина",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("missing %q in:\n%s", want, text)
		}
	}
}

func TestRenderPointerUnderCenter(t *testing.T) {
	cat := DefaultCatalog()
	text := Render(luckywheel.Snapshot{State: luckywheel.StateIdle, QuotaRemaining: 1}, cat)

	lines := strings.Split(text, "\n")
	var strip, pointer string
	for i, l := range lines {
		if strings.Contains(l, "[") {
			strip, pointer = l, lines[i+1]
			break
		}
	}
	at := strings.Index(strip, "[")
	col := len([]rune(strip[:at])) + 1
	if got := len([]rune(strings.TrimRight(pointer, "▲"))); got != col {
		t.Errorf("pointer at %d, expected %d\n%s\n%s", got, col, strip, pointer)
	}
}

func TestRenderExhausted(t *testing.T) {
	text := Render(luckywheel.Snapshot{State: luckywheel.StateIdle}, DefaultCatalog())
	if !strings.Contains(text, "Спины на сегодня закончились") {
		t.Errorf("unexpected text:\n%s", text)
	}
	if !strings.Contains(text, "Спинов не осталось") {
		t.Errorf("unexpected text:\n%s", text)
	}
}

func TestRenderSpinningAndResolved(t *testing.T) {
	cat := DefaultCatalog()

	spinning := Render(luckywheel.Snapshot{State: luckywheel.StateSpinning, QuotaRemaining: 2}, cat)
	if !strings.Contains(spinning, "Колесо крутится") {
		t.Errorf("unexpected text:\n%s", spinning)
	}

	prize := cat.Table.At(2)
	snap := luckywheel.Snapshot{
		State:          luckywheel.StateResolved,
		QuotaRemaining: 2,
		Selected:       &prize,
		SelectedIndex:  2,
		Rotation:       luckywheel.Plan(0, 2, cat.Table.SectorAngle(), 5),
		Particles:      make([]luckywheel.Particle, 35),
	}
	text := Render(snap, cat)
	for _, want := range []string{"🎉 Поздравляем!", "⚡ Энергия: 30", "[⚡30]", "✨✨✨✨"} {
		if !strings.Contains(text, want) {
			t.Errorf("missing %q in:\n%s", want, text)
		}
	}
}

func TestSparkles(t *testing.T) {
	tests := []struct {
		n    int
		want int
	}{
		{0, 0},
		{1, 1},
		{10, 1},
		{11, 2},
		{400, 10},
	}
	for _, tt := range tests {
		if got := len([]rune(Sparkles(tt.n))); got != tt.want {
			t.Errorf("Sparkles(%d) has %d sparks, want %d", tt.n, got, tt.want)
		}
	}
}
