package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/amar030383/languageLearning/internal/ai"
	"github.com/amar030383/languageLearning/internal/audio"
	"github.com/amar030383/languageLearning/internal/config"
	"github.com/amar030383/languageLearning/internal/core"
	"github.com/amar030383/languageLearning/internal/db"
	"github.com/amar030383/languageLearning/internal/vocab"
)

type view int

const (
	viewMenu view = iota
	viewInput
	viewLoading
	viewList
	viewExcluded
	viewResults
)

type inputMode int

const (
	inputModeExclude inputMode = iota
	inputModeRestore
	inputModeTranslate
	inputModeExportPath
)

const listLimit = 20

var menuItems = []string{
	"Study list",
	"Excluded words",
	"Exclude word by index",
	"Restore word by index",
	"Translate English word",
	"Export excluded words to JSON",
	"Exit",
}

// translateResultMsg carries the result of an async translation
type translateResultMsg struct {
	result *ai.Translation
	err    error
}

type model struct {
	view      view
	cursor    int
	processor *core.Processor
	database  *db.Database
	entries   []vocab.Entry
	excluded  []*db.Exclusion
	message   string
	err       error
	input     textinput.Model
	inputMode inputMode
	spinner   spinner.Model
	ctx       context.Context
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			MarginBottom(1)

	menuStyle = lipgloss.NewStyle().
			Padding(1, 2)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("170")).
			Bold(true)

	normalStyle = lipgloss.NewStyle()

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)
)

func newModel(processor *core.Processor, database *db.Database) model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return model{
		view:      viewMenu,
		processor: processor,
		database:  database,
		input:     textinput.New(),
		spinner:   s,
		ctx:       context.Background(),
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case translateResultMsg:
		if m.view != viewLoading {
			return m, nil
		}
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.message = formatTranslation(msg.result)
		}
		m.view = viewResults
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			if m.view == viewMenu {
				return m, tea.Quit
			}
			return m.backToMenu(), nil

		case "q":
			if m.view == viewMenu {
				return m, tea.Quit
			}
			if m.view != viewInput {
				return m.backToMenu(), nil
			}

		case "up", "k":
			if m.view == viewMenu && m.cursor > 0 {
				m.cursor--
			}

		case "down", "j":
			if m.view == viewMenu && m.cursor < len(menuItems)-1 {
				m.cursor++
			}

		case "enter":
			switch m.view {
			case viewMenu:
				return m.handleMenuSelection()
			case viewInput:
				return m.handleInputSubmission()
			case viewResults, viewList, viewExcluded:
				return m.backToMenu(), nil
			}
		}
	}

	// Handle text input when in input view
	if m.view == viewInput {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m model) backToMenu() model {
	m.view = viewMenu
	m.cursor = 0
	m.err = nil
	m.message = ""
	m.input.Reset()
	m.input.Blur()
	return m
}

func (m model) promptFor(mode inputMode, placeholder string) (tea.Model, tea.Cmd) {
	m.view = viewInput
	m.inputMode = mode
	m.err = nil
	m.input.Placeholder = placeholder
	m.input.Focus()
	return m, textinput.Blink
}

func (m model) handleMenuSelection() (tea.Model, tea.Cmd) {
	m.err = nil

	switch m.cursor {
	case 0: // Study list
		m.entries, m.err = m.processor.GetVocabularyList(m.ctx)
		m.view = viewList

	case 1: // Excluded words
		m.excluded, m.err = m.processor.GetExcludedList(m.ctx)
		m.view = viewExcluded

	case 2:
		return m.promptFor(inputModeExclude, "Enter word index to exclude")

	case 3:
		return m.promptFor(inputModeRestore, "Enter word index to restore")

	case 4:
		return m.promptFor(inputModeTranslate, "Enter an English word or phrase")

	case 5:
		return m.promptFor(inputModeExportPath, "Enter export file path (default: excluded_words.json)")

	case 6: // Exit
		return m, tea.Quit
	}

	return m, nil
}

func (m model) handleInputSubmission() (tea.Model, tea.Cmd) {
	inputValue := strings.TrimSpace(m.input.Value())
	m.input.Reset()
	m.input.Blur()
	m.view = viewResults

	switch m.inputMode {
	case inputModeExclude:
		index, err := strconv.Atoi(inputValue)
		if err != nil {
			m.err = fmt.Errorf("invalid index %q", inputValue)
			return m, nil
		}
		ex, err := m.processor.ExcludeWord(m.ctx, index)
		if err != nil {
			m.err = err
			return m, nil
		}
		m.message = fmt.Sprintf("Excluded #%d %s (%s)", ex.WordIndex, ex.GermanWord, ex.EnglishWord)

	case inputModeRestore:
		index, err := strconv.Atoi(inputValue)
		if err != nil {
			m.err = fmt.Errorf("invalid index %q", inputValue)
			return m, nil
		}
		if err := m.processor.RestoreWord(m.ctx, index); err != nil {
			m.err = err
			return m, nil
		}
		m.message = fmt.Sprintf("Restored #%d to the study list", index)

	case inputModeTranslate:
		m.view = viewLoading
		ctx := m.ctx
		processor := m.processor
		translateCmd := func() tea.Msg {
			result, err := processor.Translate(ctx, inputValue)
			return translateResultMsg{result: result, err: err}
		}
		return m, tea.Batch(translateCmd, m.spinner.Tick)

	case inputModeExportPath:
		if inputValue == "" {
			inputValue = "excluded_words.json"
		}
		if err := m.database.ExportToJSON(m.ctx, inputValue); err != nil {
			m.err = err
			return m, nil
		}
		m.message = fmt.Sprintf("Exported excluded words to %s", inputValue)
	}

	return m, nil
}

func formatTranslation(tr *ai.Translation) string {
	var s strings.Builder
	s.WriteString(fmt.Sprintf("%s → %s\n\n", tr.EnglishWord, tr.GermanWord))
	s.WriteString(fmt.Sprintf("EN: %s\n", tr.EnglishSentence))
	s.WriteString(fmt.Sprintf("DE: %s\n", tr.GermanSentence))
	if !tr.Available {
		s.WriteString("\n(no translation available)")
	} else {
		s.WriteString(fmt.Sprintf("\nSource: %s", tr.Source))
	}
	return s.String()
}

func (m model) View() string {
	switch m.view {
	case viewMenu:
		return m.renderMenu()
	case viewInput:
		return m.renderInput()
	case viewLoading:
		return m.renderLoading()
	case viewList:
		return m.renderStudyList()
	case viewExcluded:
		return m.renderExcluded()
	case viewResults:
		return m.renderResults()
	}
	return m.renderMenu()
}

func (m model) renderMenu() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("Deutsch Vokabeln"))
	s.WriteString("\n\n")

	for i, item := range menuItems {
		if m.cursor == i {
			s.WriteString(selectedStyle.Render("> " + item))
		} else {
			s.WriteString(normalStyle.Render("  " + item))
		}
		s.WriteString("\n")
	}

	s.WriteString("\n\n")
	s.WriteString("Use ↑/↓ arrows or j/k to navigate, Enter to select, q to quit")

	return menuStyle.Render(s.String())
}

func (m model) renderLoading() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("Deutsch Vokabeln"))
	s.WriteString("\n\n")
	s.WriteString(m.spinner.View())
	s.WriteString(" Translating...")

	return menuStyle.Render(s.String())
}

func (m model) renderInput() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("Deutsch Vokabeln"))
	s.WriteString("\n\n")

	s.WriteString(m.input.View())
	s.WriteString("\n\n")
	s.WriteString("Press Enter to submit, Esc to cancel")

	return menuStyle.Render(s.String())
}

func (m model) renderStudyList() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("Study List"))
	s.WriteString("\n\n")

	if m.err != nil {
		s.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	} else if len(m.entries) == 0 {
		s.WriteString("No words left to study.\n")
	} else {
		s.WriteString(fmt.Sprintf("Words to study: %d\n\n", len(m.entries)))
		for i, e := range m.entries {
			if i >= listLimit {
				s.WriteString(fmt.Sprintf("\n... and %d more words\n", len(m.entries)-listLimit))
				break
			}
			s.WriteString(fmt.Sprintf("%4d  %s (%s)\n", e.Index, e.GermanWord, e.EnglishWord))
			if e.GermanSentence != "" {
				s.WriteString(dimStyle.Render("      "+e.GermanSentence) + "\n")
			}
		}
	}

	s.WriteString("\n\nPress Enter to return to menu")

	return menuStyle.Render(s.String())
}

func (m model) renderExcluded() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("Excluded Words"))
	s.WriteString("\n\n")

	if m.err != nil {
		s.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	} else if len(m.excluded) == 0 {
		s.WriteString("No excluded words.\n")
	} else {
		s.WriteString(fmt.Sprintf("Excluded: %d\n\n", len(m.excluded)))
		for i, ex := range m.excluded {
			if i >= listLimit {
				s.WriteString(fmt.Sprintf("\n... and %d more words\n", len(m.excluded)-listLimit))
				break
			}
			s.WriteString(fmt.Sprintf("%4d  %s (%s)  %s\n", ex.WordIndex, ex.GermanWord, ex.EnglishWord,
				dimStyle.Render(ex.ExcludedAt.Local().Format("2006-01-02 15:04"))))
		}
	}

	s.WriteString("\n\nPress Enter to return to menu")

	return menuStyle.Render(s.String())
}

func (m model) renderResults() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("Results"))
	s.WriteString("\n\n")

	if m.err != nil {
		s.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	} else if m.message != "" {
		s.WriteString(successStyle.Render("Done"))
		s.WriteString("\n\n")
		s.WriteString(m.message)
	}

	s.WriteString("\n\nPress Enter to return to menu")

	return menuStyle.Render(s.String())
}

func main() {
	var cfgFile string

	cmd := &cobra.Command{
		Use:           "vocab",
		Short:         "Terminal study list for the German vocabulary sheet",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile, cmd.Flags())
			if err != nil {
				return err
			}

			// The TUI owns stdout
			logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

			database, err := db.NewDatabase(cfg.DatabasePath)
			if err != nil {
				return fmt.Errorf("error initializing database: %w", err)
			}
			defer database.Close()

			processor := core.NewProcessor(
				vocab.NewSource(cfg.CSVPath),
				database,
				audio.NewLocator(cfg.AudioDir),
				ai.NewDefaultChain(cfg.AnthropicAPIKey, cfg.TranslateTimeout, logger),
				logger,
			)

			_, err = tea.NewProgram(newModel(processor, database)).Run()
			return err
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.vocab.yaml)")
	cmd.Flags().String("csv", "SingeSheet.csv", "Vocabulary CSV file")
	cmd.Flags().String("db", "vocabulary.db", "SQLite database for excluded words")

	if err := cmd.Execute(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}
