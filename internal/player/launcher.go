// Package player hands a resolved media URL to an external player.
package player

import (
	"errors"
	"log/slog"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// ErrNoPlayer is returned when no candidate player could be started
var ErrNoPlayer = errors.New("no candidate players found")

// Launcher launches media URLs in an external player
type Launcher struct {
	command string   // configured player command, empty for detection
	args    []string // additional arguments for the player
	goos    string
	logger  *slog.Logger

	// Process seams, replaced in tests
	lookPath func(file string) (string, error)
	start    func(name string, args ...string) error // async
	run      func(name string, args ...string) error // waits for exit
}

// launchPath defines a single way to launch a player
type launchPath struct {
	path      string   // Command path: "mpv", "vlc", or "open-a:AppName"
	openFlags []string // For "open-a:" paths only - flags for macOS open command (e.g., ["-n"])
}

// players registry - platform launch paths to try in order
var players = map[string]map[string][]launchPath{
	"mpv": {
		"darwin":  {{path: "mpv"}},
		"linux":   {{path: "mpv"}},
		"windows": {{path: "mpv"}},
	},
	"vlc": {
		"darwin": {
			{path: "vlc"},
			{path: "open-a:VLC"},
		},
		"linux":   {{path: "vlc"}},
		"windows": {{path: "vlc"}},
	},
	"iina": {
		"darwin": {{path: "open-a:IINA", openFlags: []string{"-n"}}}, // IINA needs -n for new windows
	},
	"celluloid": {
		"linux": {{path: "celluloid"}},
	},
	"smplayer": {
		"linux":   {{path: "smplayer"}},
		"windows": {{path: "smplayer"}},
	},
	"potplayer": {
		"windows": {{path: "PotPlayerMini64.exe"}, {path: "PotPlayerMini.exe"}},
	},
}

// candidatePlayers defines the preferred player order for each platform
var candidatePlayers = map[string][]string{
	"darwin":  {"iina", "vlc", "mpv"},
	"linux":   {"mpv", "vlc", "celluloid", "smplayer"},
	"windows": {"vlc", "mpv", "potplayer", "smplayer"},
}

// NewLauncher creates a launcher for the configured command. An empty command
// means detect a player, then fall back to the system opener.
func NewLauncher(command string, args []string, logger *slog.Logger) *Launcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Launcher{
		command:  command,
		args:     args,
		goos:     runtime.GOOS,
		logger:   logger,
		lookPath: exec.LookPath,
		start: func(name string, args ...string) error {
			return exec.Command(name, args...).Start()
		},
		run: func(name string, args ...string) error {
			return exec.Command(name, args...).Run()
		},
	}
}

// Launch opens a media URL in the configured player or system default
func (l *Launcher) Launch(url string) error {
	// Tier 1: User configured a specific player
	if l.command != "" {
		l.logger.Info("using configured player", "command", l.command)
		return l.launchConfigured(url)
	}

	// Tier 2: Try candidate chain (IINA → VLC → mpv on macOS, etc.)
	if _, err := l.detectAndLaunch(url); err == nil {
		return nil
	}

	// Tier 3: Fall back to system default (open/xdg-open/start)
	l.logger.Info("no candidate players found, using system default")
	return l.launchDefault(url)
}

// openWithApp opens url with a macOS app through "open -a". open exits
// non-zero when the app does not exist, so it is waited for.
func (l *Launcher) openWithApp(appName, url string, playerArgs, openFlags []string) error {
	cmdArgs := append([]string{}, openFlags...)
	cmdArgs = append(cmdArgs, "-a", appName)
	if len(playerArgs) > 0 {
		cmdArgs = append(cmdArgs, "--args")
		cmdArgs = append(cmdArgs, playerArgs...)
	}
	cmdArgs = append(cmdArgs, url)
	return l.run("open", cmdArgs...)
}

// launchWithCommand starts a CLI player found in PATH without waiting.
func (l *Launcher) launchWithCommand(command, url string, args []string) error {
	if _, err := l.lookPath(command); err != nil {
		return err
	}
	cmdArgs := append(append([]string{}, args...), url)
	return l.start(command, cmdArgs...)
}

// detectAndLaunch tries candidate players in order and returns the one that started.
func (l *Launcher) detectAndLaunch(url string) (string, error) {
	candidates, ok := candidatePlayers[l.goos]
	if !ok {
		candidates = candidatePlayers["linux"]
	}

	for _, name := range candidates {
		paths, ok := players[name][l.goos]
		if !ok {
			l.logger.Debug("player not available on this platform", "player", name, "platform", l.goos)
			continue
		}

		for _, lp := range paths {
			var err error
			if app, isApp := strings.CutPrefix(lp.path, "open-a:"); isApp {
				err = l.openWithApp(app, url, nil, lp.openFlags)
			} else {
				err = l.launchWithCommand(lp.path, url, nil)
			}

			if err == nil {
				l.logger.Info("launched with detected player", "player", name, "path", lp.path)
				return name, nil
			}
			l.logger.Debug("launch path not available", "player", name, "path", lp.path, "error", err)
		}
	}

	return "", ErrNoPlayer
}

// launchConfigured launches the media using the configured player
func (l *Launcher) launchConfigured(url string) error {
	args := append([]string{}, l.args...)
	l.logger.Info("launching player", "command", l.command, "args", args, "url", url)

	// On macOS, GUI apps outside PATH are opened with 'open -a'
	if l.goos == "darwin" {
		if _, err := l.lookPath(l.command); err != nil {
			var openFlags []string
			if paths, ok := players[playerName(l.command)]["darwin"]; ok {
				for _, lp := range paths {
					if strings.HasPrefix(lp.path, "open-a:") {
						openFlags = lp.openFlags
						break
					}
				}
			}
			l.logger.Info("using macOS 'open -a' to launch GUI app", "app", l.command)
			return l.openWithApp(l.command, url, args, openFlags)
		}
	}

	return l.start(l.command, append(args, url)...)
}

// launchDefault opens the URL using the system default handler
func (l *Launcher) launchDefault(url string) error {
	l.logger.Info("launching with system default", "os", l.goos, "url", url)

	switch l.goos {
	case "darwin":
		return l.start("open", url)
	case "windows":
		return l.start("cmd", "/c", "start", "", url)
	default:
		return l.start("xdg-open", url)
	}
}

// playerName maps a command path to its registry key ("/usr/bin/VLC.exe" -> "vlc").
func playerName(command string) string {
	base := filepath.Base(command)
	return strings.ToLower(strings.TrimSuffix(base, filepath.Ext(base)))
}
