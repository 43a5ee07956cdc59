//go:build linux

package sound

// completionCommands tries PulseAudio first, then ALSA.
func completionCommands() []command {
	return []command{
		{"paplay", []string{"/usr/share/sounds/freedesktop/stereo/complete.oga"}},
		{"aplay", []string{"/usr/share/sounds/freedesktop/stereo/complete.wav"}},
	}
}

func fileCommands(path string) []command {
	cmds := []command{{"paplay", []string{path}}}
	if isWAV(path) {
		cmds = append(cmds, command{"aplay", []string{path}})
	}
	return cmds
}
