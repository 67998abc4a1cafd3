package httpapi

import (
	"serotonyl.ru/wallet-bot/internal/common"
	"serotonyl.ru/wallet-bot/internal/features/wheel"
	"serotonyl.ru/wallet-bot/internal/luckywheel"
)

type prizeView struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Value string `json:"value"`
	Label string `json:"label"`
	Tag   string `json:"tag"`
	Emoji string `json:"emoji"`
	Color string `json:"color"`
}

type sectorView struct {
	prizeView
	StartAngle  float64 `json:"startAngle"`
	Probability float64 `json:"probability"`
}

type particleView struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Rotation float64 `json:"rotation"`
	Scale    float64 `json:"scale"`
	Opacity  float64 `json:"opacity"`
	Color    string  `json:"color"`
}

type wheelView struct {
	State              string         `json:"state"`
	QuotaRemaining     int            `json:"quotaRemaining"`
	Rotation           float64        `json:"rotation"`
	CumulativeRotation float64        `json:"cumulativeRotation"`
	Animating          bool           `json:"animating"`
	SpinID             string         `json:"spinId,omitempty"`
	Selected           *prizeView     `json:"selected,omitempty"`
	SelectedIndex      int            `json:"selectedIndex"`
	Sectors            []sectorView   `json:"sectors,omitempty"`
	Particles          []particleView `json:"particles,omitempty"`
}

type spinResponse struct {
	Outcome string    `json:"outcome"`
	Wheel   wheelView `json:"wheel"`
}

type dismissResponse struct {
	Dismissed bool      `json:"dismissed"`
	Wheel     wheelView `json:"wheel"`
}

func newPrizeView(p luckywheel.Prize, cat *wheel.Catalog) prizeView {
	d := cat.DecorationFor(p)
	return prizeView{
		ID:    p.ID,
		Name:  p.Name,
		Value: p.Value.String(),
		Label: common.FormatDecimal(p.Value),
		Tag:   string(p.Tag),
		Emoji: d.Emoji,
		Color: d.Color,
	}
}

func newWheelView(snap luckywheel.Snapshot, cat *wheel.Catalog) wheelView {
	v := wheelView{
		State:              string(snap.State),
		QuotaRemaining:     snap.QuotaRemaining,
		Rotation:           snap.Rotation,
		CumulativeRotation: snap.CumulativeRotation,
		Animating:          snap.Animating,
		SelectedIndex:      -1,
	}
	if snap.Selected != nil {
		pv := newPrizeView(*snap.Selected, cat)
		v.Selected = &pv
		v.SelectedIndex = snap.SelectedIndex
		v.SpinID = snap.SpinID.String()
	}
	return v
}

func sectorsOf(cat *wheel.Catalog) []sectorView {
	t := cat.Table
	out := make([]sectorView, t.Len())
	for i := range out {
		out[i] = sectorView{
			prizeView:   newPrizeView(t.At(i), cat),
			StartAngle:  float64(i) * t.SectorAngle(),
			Probability: t.Probability(i),
		}
	}
	return out
}

func particlesOf(ps []luckywheel.Particle) []particleView {
	out := make([]particleView, len(ps))
	for i, p := range ps {
		out[i] = particleView{
			X:        p.Position.X,
			Y:        p.Position.Y,
			Rotation: p.Rotation,
			Scale:    p.Scale,
			Opacity:  p.Opacity,
			Color:    p.Color.Hex(),
		}
	}
	return out
}
