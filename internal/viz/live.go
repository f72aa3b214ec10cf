package viz

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/avendal/sedlab/internal/grid"
	"github.com/avendal/sedlab/internal/passband"
	"github.com/avendal/sedlab/internal/pipeline"
	"github.com/avendal/sedlab/internal/sed"
	"github.com/avendal/sedlab/internal/units"
)

var liveParams = []string{"Teff", "logg", "logL", "Av", "Rv"}

type liveState struct {
	star   sed.Star
	av, rv float64
	lawIdx int
}

// Live is the interactive single-star SED explorer.
type Live struct {
	lib   sed.Library
	reg   *pipeline.Registry
	bands []*passband.Passband
	wave  []float64
	laws  []string

	cur      liveState
	start    liveState
	paramIdx int
	width    int
}

// NewLive sets up the explorer around one star. The config supplies
// the wavelength grid and the starting law, Av and Rv.
func NewLive(lib sed.Library, bands []*passband.Passband, cfg pipeline.Config, star sed.Star) Live {
	reg := pipeline.NewRegistry()
	laws := append([]string{"none"}, reg.ListLaws()...)

	lawIdx := 0
	for i, name := range laws {
		if name == cfg.Law {
			lawIdx = i
			break
		}
	}

	st := liveState{star: star, av: cfg.Av, rv: cfg.Rv, lawIdx: lawIdx}
	return Live{
		lib:   lib,
		reg:   reg,
		bands: bands,
		wave:  grid.Logspace(cfg.GridLo, cfg.GridHi, cfg.GridN),
		laws:  laws,
		cur:   st,
		start: st,
		width: plotWidth,
	}
}

func (m Live) Init() tea.Cmd { return nil }

func (m Live) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "tab":
			m.paramIdx = (m.paramIdx + 1) % len(liveParams)
		case "up", "k":
			m.cur = m.adjusted(+1)
		case "down", "j":
			m.cur = m.adjusted(-1)
		case "l":
			m.cur.lawIdx = (m.cur.lawIdx + 1) % len(m.laws)
		case "r":
			m.cur = m.start
		}
	}
	return m, nil
}

// adjusted nudges the selected parameter. Teff moves multiplicatively,
// the log and dust parameters in fixed steps.
func (m Live) adjusted(dir float64) liveState {
	st := m.cur
	switch liveParams[m.paramIdx] {
	case "Teff":
		if dir > 0 {
			st.star.Teff *= 1.05
		} else {
			st.star.Teff *= 0.95
		}
	case "logg":
		st.star.LogG += 0.1 * dir
	case "logL":
		st.star.LogL += 0.1 * dir
	case "Av":
		st.av += 0.05 * dir
		if st.av < 0 {
			st.av = 0
		}
	case "Rv":
		if st.rv == 0 {
			if law := m.law(st); law != nil {
				st.rv = law.RvDefault()
			} else {
				st.rv = 3.1
			}
		}
		st.rv += 0.1 * dir
		if st.rv < 0.1 {
			st.rv = 0.1
		}
	}
	return st
}

func (m Live) law(st liveState) sed.Law {
	law, err := m.reg.GetLaw(m.laws[st.lawIdx])
	if err != nil {
		return nil
	}
	return law
}

type bandMag struct {
	name string
	text string
}

func (m Live) compute() (intr, att *sed.Spectrum, mags []bandMag, err error) {
	spec, err := m.lib.Spectrum(m.cur.star)
	if err != nil {
		return nil, nil, nil, err
	}
	intr, err = spec.Resample(m.wave)
	if err != nil {
		return nil, nil, nil, err
	}

	att = intr.Clone()
	if law := m.law(m.cur); law != nil && m.cur.av > 0 {
		rv := m.cur.rv
		if rv == 0 {
			rv = law.RvDefault()
		}
		alav, aerr := law.AlAv(m.wave, rv)
		if aerr != nil {
			return nil, nil, nil, aerr
		}
		for i := range att.Flux {
			att.Flux[i] *= units.AttenuationFactor(m.cur.av * alav[i])
		}
	}

	for _, band := range m.bands {
		flux, ferr := band.Flux(att)
		if ferr != nil {
			if errors.Is(ferr, sed.ErrCoverage) {
				mags = append(mags, bandMag{name: band.Name, text: "--"})
				continue
			}
			return nil, nil, nil, ferr
		}
		zp, zerr := band.Zeropoint(passband.Vega)
		if zerr != nil {
			return nil, nil, nil, zerr
		}
		mags = append(mags, bandMag{
			name: band.Name,
			text: fmt.Sprintf("%.3f", units.FluxToMag(flux, zp)),
		})
	}

	return intr, att, mags, nil
}

func (m Live) View() string {
	var b strings.Builder
	b.WriteString(Title.Render("sedlab live"))
	b.WriteString(Subtle.Render("  single-star SED explorer"))
	b.WriteString("\n\n")

	intr, att, mags, err := m.compute()
	if err != nil {
		b.WriteString(StatusWarn.Render("error: "+err.Error()) + "\n\n")
		b.WriteString(KeyHint.Render("r reset · q quit") + "\n")
		return b.String()
	}

	b.WriteString(SEDPlot(m.wave, intr.Flux, att.Flux))
	b.WriteString("\n\n")
	b.WriteString(m.paramLine() + "\n")
	b.WriteString(m.magLine(mags) + "\n")
	b.WriteString(Separator(m.width) + "\n")
	b.WriteString(KeyHint.Render("tab param · ↑/↓ adjust · l law · r reset · q quit") + "\n")
	return b.String()
}

func (m Live) paramLine() string {
	star := m.cur.star
	rvText := fmt.Sprintf("%.2f", m.cur.rv)
	if m.cur.rv == 0 {
		rvText = "auto"
	}
	vals := []string{
		fmt.Sprintf("%.0f K", star.Teff),
		fmt.Sprintf("%.2f", star.LogG),
		fmt.Sprintf("%.2f", star.LogL),
		fmt.Sprintf("%.2f", m.cur.av),
		rvText,
	}

	parts := make([]string, 0, len(liveParams)+1)
	for i, name := range liveParams {
		text := name + "=" + vals[i]
		if i == m.paramIdx {
			parts = append(parts, Selected.Render(text))
		} else {
			parts = append(parts, Label.Render(name+"=")+Value.Render(vals[i]))
		}
	}
	parts = append(parts, Label.Render("law=")+Value.Render(m.laws[m.cur.lawIdx]))
	return strings.Join(parts, "  ")
}

func (m Live) magLine(mags []bandMag) string {
	parts := make([]string, 0, len(mags))
	for _, bm := range mags {
		parts = append(parts, Label.Render(bm.name+"=")+Value.Render(bm.text))
	}
	return strings.Join(parts, "  ")
}
