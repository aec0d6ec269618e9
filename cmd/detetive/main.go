package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	localFlag  = flag.Bool("local", true, "Use a local server")
	serverFlag = flag.String("server", "", "Server base URL, overrides -local")

	// Styles
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			MarginLeft(2)

	itemStyle = lipgloss.NewStyle().
			MarginLeft(2)

	selectedItemStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("170")).
				Bold(true).
				MarginLeft(2)

	cardStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(1).
			MarginLeft(2)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true).
			MarginLeft(2)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			MarginLeft(2)
)

func main() {
	flag.Parse()

	serverURL := "http://localhost:8080"
	if *serverFlag != "" {
		serverURL = *serverFlag
	} else if !*localFlag {
		serverURL = "https://detetive.app"
	}

	p := tea.NewProgram(
		initialModel(serverURL),
		tea.WithAltScreen(),
	)

	if _, err := p.Run(); err != nil {
		log.Fatal(err)
	}
}

// GameData mirrors the server's decoded investigation payload.
type GameData struct {
	GameNumber string   `json:"gameNumber"`
	Suspects   []string `json:"suspects"`
	Weapons    []string `json:"weapons"`
	Locations  []string `json:"locations"`
}

type screen int

const (
	screenList screen = iota
	screenDetail
)

type gamesListMsg []GameData

type deleteDoneMsg string

type errMsg struct {
	err error
}

type model struct {
	serverURL string
	screen    screen

	loading bool
	spinner spinner.Model

	games    []GameData
	cursor   int
	selected *GameData

	status string
	error  string
}

func initialModel(serverURL string) model {
	s := spinner.New()
	s.Spinner = spinner.Dot

	return model{
		serverURL: serverURL,
		screen:    screenList,
		loading:   true,
		spinner:   s,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, fetchGames(m.serverURL))
}

func fetchGames(serverURL string) tea.Cmd {
	return func() tea.Msg {
		resp, err := http.Get(serverURL + "/api/games")
		if err != nil {
			return errMsg{err}
		}
		defer resp.Body.Close()

		var payload struct {
			Success bool       `json:"success"`
			Message string     `json:"message"`
			Games   []GameData `json:"games"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			return errMsg{err}
		}

		if !payload.Success {
			return errMsg{errors.New(payload.Message)}
		}

		return gamesListMsg(payload.Games)
	}
}

func deleteGame(serverURL, gameNumber string) tea.Cmd {
	return func() tea.Msg {
		req, err := http.NewRequest(http.MethodDelete, serverURL+"/delete-game/"+gameNumber, nil)
		if err != nil {
			return errMsg{err}
		}

		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return errMsg{err}
		}
		defer resp.Body.Close()

		var payload struct {
			Success bool   `json:"success"`
			Message string `json:"message"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			return errMsg{err}
		}

		if !payload.Success {
			return errMsg{errors.New(payload.Message)}
		}

		return deleteDoneMsg(payload.Message)
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case gamesListMsg:
		m.loading = false
		m.error = ""
		m.games = msg
		if m.cursor >= len(m.games) {
			m.cursor = 0
		}
		return m, nil

	case deleteDoneMsg:
		m.status = string(msg)
		m.loading = true
		m.screen = screenList
		m.selected = nil
		return m, tea.Batch(m.spinner.Tick, fetchGames(m.serverURL))

	case errMsg:
		m.loading = false
		m.error = msg.err.Error()
		return m, nil
	}

	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "esc":
		if m.screen == screenDetail {
			m.screen = screenList
			m.selected = nil
		}
		return m, nil

	case "up", "k":
		if m.screen == screenList && m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case "down", "j":
		if m.screen == screenList && m.cursor < len(m.games)-1 {
			m.cursor++
		}
		return m, nil

	case "enter":
		if m.screen == screenList && len(m.games) > 0 {
			game := m.games[m.cursor]
			m.selected = &game
			m.screen = screenDetail
		}
		return m, nil

	case "d":
		if len(m.games) > 0 {
			var target string
			if m.screen == screenDetail && m.selected != nil {
				target = m.selected.GameNumber
			} else {
				target = m.games[m.cursor].GameNumber
			}
			m.loading = true
			return m, tea.Batch(m.spinner.Tick, deleteGame(m.serverURL, target))
		}
		return m, nil

	case "r":
		m.loading = true
		m.status = ""
		return m, tea.Batch(m.spinner.Tick, fetchGames(m.serverURL))
	}

	return m, nil
}

func (m model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Detetive — Investigações"))
	b.WriteString("\n\n")

	if m.error != "" {
		b.WriteString(errorStyle.Render(m.error))
		b.WriteString("\n\n")
	}

	if m.status != "" {
		b.WriteString(itemStyle.Render(m.status))
		b.WriteString("\n\n")
	}

	if m.loading {
		b.WriteString(itemStyle.Render(m.spinner.View() + " carregando..."))
		b.WriteString("\n")
		return b.String()
	}

	switch m.screen {
	case screenDetail:
		b.WriteString(m.detailView())
	default:
		b.WriteString(m.listView())
	}

	return b.String()
}

func (m model) listView() string {
	var b strings.Builder

	if len(m.games) == 0 {
		b.WriteString(itemStyle.Render("Nenhuma investigação em andamento."))
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("r: atualizar • q: sair"))
		return b.String()
	}

	for i, game := range m.games {
		line := fmt.Sprintf("Investigação nº %s (%d suspeitos, %d armas, %d locais)",
			game.GameNumber, len(game.Suspects), len(game.Weapons), len(game.Locations))
		if i == m.cursor {
			b.WriteString(selectedItemStyle.Render("> " + line))
		} else {
			b.WriteString(itemStyle.Render("  " + line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("enter: abrir • d: excluir • r: atualizar • q: sair"))

	return b.String()
}

func (m model) detailView() string {
	if m.selected == nil {
		return itemStyle.Render("Nenhuma investigação selecionada.")
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("Investigação nº %s\n\n", m.selected.GameNumber))
	b.WriteString("Suspeitos eliminados:\n")
	b.WriteString(cardLines(m.selected.Suspects))
	b.WriteString("\nArmas eliminadas:\n")
	b.WriteString(cardLines(m.selected.Weapons))
	b.WriteString("\nLocais eliminados:\n")
	b.WriteString(cardLines(m.selected.Locations))

	out := cardStyle.Render(b.String())
	return out + "\n\n" + helpStyle.Render("esc: voltar • d: excluir • q: sair")
}

func cardLines(cards []string) string {
	if len(cards) == 0 {
		return "  (nenhum)\n"
	}

	var b strings.Builder
	for _, card := range cards {
		b.WriteString("  • " + card + "\n")
	}

	return b.String()
}
