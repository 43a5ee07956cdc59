// Package sound plays the session completion cue and tracks the background
// music volume.
package sound

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

type command struct {
	name string
	args []string
}

// Player plays the completion sound with the platform's audio tool, falling
// back to a terminal bell.
type Player struct {
	customFile string
	bell       io.Writer
	// start launches a command without waiting for it to finish.
	start func(ctx context.Context, name string, args ...string) error
	// readable reports whether a sound file can be opened.
	readable func(path string) bool
}

// NewPlayer creates a Player. customFile, when set, is tried before the
// platform default sounds. The bell is written to bell.
func NewPlayer(customFile string, bell io.Writer) *Player {
	return &Player{
		customFile: customFile,
		bell:       bell,
		start:      startCommand,
		readable:   fileReadable,
	}
}

// PlayCompletion plays the completion cue. Players run detached, so a
// command is only tried when its sound file can be read; otherwise a player
// that starts and then fails would swallow the bell.
func (p *Player) PlayCompletion(ctx context.Context) error {
	for _, c := range p.commands() {
		if len(c.args) > 0 && !p.readable(c.args[len(c.args)-1]) {
			continue
		}
		if err := p.start(ctx, c.name, c.args...); err == nil {
			return nil
		}
	}
	return p.terminalBell()
}

func (p *Player) commands() []command {
	var cmds []command
	if p.customFile != "" {
		cmds = append(cmds, fileCommands(p.customFile)...)
	}
	return append(cmds, completionCommands()...)
}

func (p *Player) terminalBell() error {
	if p.bell == nil {
		return nil
	}
	if _, err := fmt.Fprint(p.bell, "\a"); err != nil {
		return fmt.Errorf("terminal bell: %w", err)
	}
	return nil
}

func startCommand(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

func fileReadable(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()
	info, err := f.Stat()
	return err == nil && !info.IsDir()
}

// isWAV reports whether path names a wav file, which aplay can play.
func isWAV(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".wav")
}
