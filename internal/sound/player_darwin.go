//go:build darwin

package sound

func completionCommands() []command {
	return []command{
		{"afplay", []string{"/System/Library/Sounds/Glass.aiff"}},
		{"afplay", []string{"/System/Library/Sounds/Tink.aiff"}},
	}
}

func fileCommands(path string) []command {
	return []command{{"afplay", []string{path}}}
}
