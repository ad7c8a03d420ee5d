//go:build windows

package tui

import (
	"errors"

	tea "github.com/charmbracelet/bubbletea"
)

var errResidentUnsupported = errors.New("resident overlay is not supported on windows")

func watchToggle(*tea.Program) (func(), error) { return nil, errResidentUnsupported }

func sendToggle(int) error { return errResidentUnsupported }

func processAlive(int) bool { return false }
