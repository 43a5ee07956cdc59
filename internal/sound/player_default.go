//go:build !darwin && !linux

package sound

// Unsupported platforms fall straight through to the terminal bell.
func completionCommands() []command { return nil }

func fileCommands(string) []command { return nil }
