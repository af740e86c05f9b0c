package main

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
)

type Config struct {
	SaveDirectory string
	StartMode     Mode
	MinPane       int
	Style         string
	Debounce      time.Duration
	LogFile       string
}

func defaultConfig() *Config {
	return &Config{
		StartMode: ModeTable,
		MinPane:   defaultMinPane,
		Style:     "monokai",
		Debounce:  defaultDebounce,
	}
}

// loadConfig reads ~/.texpadrc, then a .env in the working directory, then
// TEXPAD_* variables. Missing files leave the defaults alone.
func loadConfig() *Config {
	config := defaultConfig()

	homeDir, _ := homedir.Dir()
	if homeDir != "" {
		if file, err := os.Open(filepath.Join(homeDir, ".texpadrc")); err == nil {
			parseConfig(file, homeDir, config)
			file.Close()
		}
	}

	_ = godotenv.Load()
	applyEnv(config, os.Getenv, homeDir)
	return config
}

func parseConfig(r io.Reader, homeDir string, config *Config) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		switch strings.ToLower(key) {
		case "savedirectory", "save_directory", "savedir":
			config.SaveDirectory = expandPath(value, homeDir)
		case "startmode", "start_mode", "mode":
			if mode, ok := parseMode(value); ok {
				config.StartMode = mode
			}
		case "minpane", "min_pane":
			if n, err := strconv.Atoi(value); err == nil && n > 0 {
				config.MinPane = n
			}
		case "style", "theme":
			config.Style = value
		case "debounce":
			config.Debounce = parseDebounce(value, config.Debounce)
		case "logfile", "log_file", "log":
			config.LogFile = expandPath(value, homeDir)
		}
	}
}

func applyEnv(config *Config, getenv func(string) string, homeDir string) {
	if v := getenv("TEXPAD_SAVE_DIR"); v != "" {
		config.SaveDirectory = expandPath(v, homeDir)
	}
	if v := getenv("TEXPAD_START_MODE"); v != "" {
		if mode, ok := parseMode(v); ok {
			config.StartMode = mode
		}
	}
	if v := getenv("TEXPAD_STYLE"); v != "" {
		config.Style = v
	}
	if v := getenv("TEXPAD_LOG_FILE"); v != "" {
		config.LogFile = expandPath(v, homeDir)
	}
}

func parseMode(value string) (Mode, bool) {
	switch strings.ToLower(value) {
	case "table", "tabular":
		return ModeTable, true
	case "diagram", "tikz":
		return ModeDiagram, true
	case "whiteboard", "board", "draw":
		return ModeWhiteboard, true
	}
	return ModeTable, false
}

// parseDebounce accepts "250ms"-style durations or bare milliseconds.
func parseDebounce(value string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(value); err == nil && d >= 0 {
		return d
	}
	if ms, err := strconv.Atoi(value); err == nil && ms >= 0 {
		return time.Duration(ms) * time.Millisecond
	}
	return fallback
}

func expandPath(value, homeDir string) string {
	if strings.HasPrefix(value, "~") && homeDir != "" {
		value = filepath.Join(homeDir, strings.TrimPrefix(value, "~"))
	}
	if !filepath.IsAbs(value) {
		if absPath, err := filepath.Abs(value); err == nil {
			value = absPath
		}
	}
	return value
}

func (c *Config) GetSavePath(filename string) string {
	if c.SaveDirectory == "" || filepath.IsAbs(filename) {
		return filename
	}
	os.MkdirAll(c.SaveDirectory, 0755)
	return filepath.Join(c.SaveDirectory, filename)
}
