package cli

import (
	"errors"
	"fmt"
	"kiosk/models"
	"kiosk/settings"
	"kiosk/state"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/chzyer/readline"
)

// Console is the interactive operator console of a running kiosk
type Console struct {
	rl      *readline.Instance
	running bool
	client  *Client
	config  *Config
}

// NewConsole connects to the kiosk at serverURL and prepares the prompt.
func NewConsole(serverURL string) (*Console, error) {
	client := NewClient(serverURL)

	// Test connectivity
	if _, err := client.HealthCheck(); err != nil {
		return nil, fmt.Errorf("cannot connect to kiosk: %v", err)
	}

	// Create readline instance; ignore Ctrl+C
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		AutoComplete:    completer,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %v", err)
	}

	cfg, err := LoadConfig()
	if err != nil {
		printWarn(fmt.Sprintf("Warning: console configuration unavailable: %v", err))
	}

	return &Console{
		rl:      rl,
		running: true,
		client:  client,
		config:  cfg,
	}, nil
}

var completer = readline.NewPrefixCompleter(
	readline.PcItem("help"),
	readline.PcItem("status"),
	readline.PcItem("exhibits"),
	readline.PcItem("show"),
	readline.PcItem("range"),
	readline.PcItem("settings"),
	readline.PcItem("set",
		readline.PcItem("fullscreen", readline.PcItem("on"), readline.PcItem("off")),
		readline.PcItem("vsync", readline.PcItem("on"), readline.PcItem("off")),
		readline.PcItem("aa"),
		readline.PcItem("resolution"),
		readline.PcItem("driver"),
		readline.PcItem("forward"),
		readline.PcItem("backward"),
		readline.PcItem("left"),
		readline.PcItem("right"),
	),
	readline.PcItem("cancel"),
	readline.PcItem("scene"),
	readline.PcItem("graph"),
	readline.PcItem("key", readline.PcItem("esc"), readline.PcItem("f1")),
	readline.PcItem("target"),
	readline.PcItem("click"),
	readline.PcItem("close"),
	readline.PcItem("diag", readline.PcItem("clear"), readline.PcItem("warn"), readline.PcItem("error")),
	readline.PcItem("servers", readline.PcItem("add"), readline.PcItem("use"), readline.PcItem("rm")),
	readline.PcItem("shutdown"),
	readline.PcItem("clear"),
	readline.PcItem("exit"),
)

// Start runs the console loop
func (c *Console) Start() {
	defer c.rl.Close()
	c.printWelcome()

	for c.running {
		line, err := c.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				fmt.Println("\nCtrl+C detected. Please use 'exit' or 'quit' command to exit gracefully.")
				continue
			}
			// EOF or other error; exit
			break
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		c.handleCommand(input)
	}
}

// printWelcome prints initial banner
func (c *Console) printWelcome() {
	PrintBanner("Museo de Ciencias - Kiosk Console")
	fmt.Printf("\nConnected to: %s\n", c.client.baseURL)
	fmt.Println("Type 'help' for available commands")
}

// handleCommand routes user commands
func (c *Console) handleCommand(input string) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return
	}

	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "help", "h", "?":
		c.showHelp()
	case "status", "st":
		c.handleStatus()
	case "exhibits", "ls":
		c.listExhibits()
	case "show":
		c.showExhibit(args)
	case "range":
		c.handleRange(args)
	case "settings":
		c.showSettings()
	case "set":
		c.handleSet(args)
	case "cancel":
		c.handleCancel()
	case "scene":
		c.showScene()
	case "graph":
		c.showGraph()
	case "key":
		c.handleKey(args)
	case "target":
		c.handleTarget(args)
	case "click":
		c.sendEvent(state.Event{Type: state.EventClick})
	case "close":
		c.sendEvent(state.Event{Type: state.EventDialogClosed})
	case "diag":
		c.handleDiag(args)
	case "servers":
		c.handleServers(args)
	case "shutdown":
		c.handleShutdown()
	case "clear":
		c.clearScreen()
	case "exit", "quit", "q":
		c.running = false
		fmt.Println("Goodbye!")
	default:
		fmt.Printf("Unknown command: %s. Type 'help' for available commands.\n", cmd)
	}
}

// showHelp prints available commands
func (c *Console) showHelp() {
	fmt.Println()
	PrintBanner("Available Commands")
	fmt.Println()

	commands := [][]string{
		{"help, h, ?", "Show this help message"},
		{"", ""},
		{"EXHIBITS:", ""},
		{"exhibits", "List all exhibits"},
		{"show <id>", "Show the info dialog of an exhibit"},
		{"range <a> <b>", "List exhibits at positions a..b"},
		{"", ""},
		{"SETTINGS:", ""},
		{"settings", "Show current settings"},
		{"set <field> <value>", "Change and save a setting"},
		{"", "fields: fullscreen vsync aa resolution driver forward backward left right"},
		{"cancel", "Close the settings dialog without saving"},
		{"", ""},
		{"SCENE AND UI:", ""},
		{"scene", "Show the loaded scene descriptor"},
		{"graph", "List scene graph nodes"},
		{"key <esc|f1>", "Press a key in the hall"},
		{"target <id>", "Aim the camera at a node (0 for none)"},
		{"click", "Click the targeted exhibit"},
		{"close", "Close the open dialog"},
		{"", ""},
		{"SYSTEM:", ""},
		{"status", "Show kiosk health and UI mode"},
		{"diag [clear|warn|error]", "Show or clear diagnostics"},
		{"servers [add|use|rm]", "Manage known kiosks"},
		{"shutdown", "Shut the kiosk down (asks for confirmation)"},
		{"clear", "Clear screen"},
		{"exit, quit, q", "Exit the console"},
	}

	for _, cmd := range commands {
		switch {
		case cmd[0] != "":
			fmt.Printf("  %-30s %s\n", cmd[0], cmd[1])
		case cmd[1] != "":
			fmt.Printf("  %-30s %s\n", "", cmd[1])
		default:
			fmt.Println()
		}
	}
}

func (c *Console) handleStatus() {
	h, err := c.client.HealthCheck()
	if err != nil {
		printError(err)
		return
	}
	ui, err := c.client.GetUI()
	if err != nil {
		printError(err)
		return
	}

	fmt.Println()
	PrintBanner("Kiosk Status")
	fmt.Printf("\nStatus:          %s\n", h.Status)
	fmt.Printf("Scene loaded:    %s\n", yesNo(h.SceneLoaded))
	fmt.Printf("Exhibits:        %s\n", upDown(h.ExhibitsUp))
	fmt.Printf("Settings saved:  %s\n", yesNo(h.SettingsSaved))
	fmt.Printf("UI mode:         %s\n", ui.Mode)
	fmt.Printf("Target:          %d\n", ui.Target)
	fmt.Printf("Cursor:          %s (%s)\n", ui.CursorIcon, visibleHidden(ui.CursorVisible))
	if ui.OpenExhibit > 0 {
		fmt.Printf("Open exhibit:    %d\n", ui.OpenExhibit)
	}
}

func (c *Console) listExhibits() {
	items, err := c.client.ListExhibits()
	if err != nil {
		printError(err)
		return
	}
	printExhibitTable(items)
}

func (c *Console) handleRange(args []string) {
	if len(args) < 2 {
		fmt.Println("Usage: range <a> <b>")
		return
	}
	a, errA := strconv.Atoi(args[0])
	b, errB := strconv.Atoi(args[1])
	if errA != nil || errB != nil {
		fmt.Println("Invalid range: positions must be integers")
		return
	}
	items, err := c.client.ExhibitRange(a, b)
	if err != nil {
		printError(err)
		return
	}
	printExhibitTable(items)
}

func printExhibitTable(items []models.ExhibitRead) {
	if len(items) == 0 {
		fmt.Println("No exhibits.")
		return
	}

	fmt.Println()
	PrintBanner(fmt.Sprintf("Total Exhibits: %d", len(items)))
	fmt.Println()

	fmt.Printf("%-6s %-30s %-25s %-20s\n", "ID", "Title", "Model", "Photo")
	fmt.Println(strings.Repeat("-", 84))
	for _, e := range items {
		fmt.Printf("%-6d %-30s %-25s %-20s\n",
			e.ID,
			truncate(e.Title, 30),
			truncate(orDash(e.ModelPath), 25),
			truncate(orDash(e.PhotoPath), 20),
		)
	}
}

func (c *Console) showExhibit(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: show <id>")
		return
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Println("Invalid ID")
		return
	}
	e, err := c.client.GetExhibit(id)
	if err != nil {
		printError(err)
		return
	}
	printExhibit(e)
}

func printExhibit(e *models.ExhibitRead) {
	fmt.Println()
	PrintBanner(e.Title)
	fmt.Printf("\nID:           %d\n", e.ID)
	fmt.Printf("Description:  %s\n", e.Description)
	fmt.Printf("Photo:        %s\n", orDash(e.PhotoPath))
	fmt.Printf("Model:        %s\n", orDash(e.ModelPath))
	fmt.Printf("Translation:  %s\n", formatVec(e.Translation))
	fmt.Printf("Rotation:     %s x %s = %s\n", formatVec(e.Rotation), formatFloat(e.Amount), formatVec(e.Applied))
	fmt.Printf("Scaling:      %s\n", formatVec(e.Scaling))
}

func (c *Console) showSettings() {
	s, err := c.client.GetSettings()
	if err != nil {
		printError(err)
		return
	}
	printSettings(s)
}

func printSettings(s *models.SettingsRead) {
	fmt.Println()
	PrintBanner("Settings")
	fmt.Printf("\nResolution:    %s\n", s.Resolution)
	fmt.Printf("Fullscreen:    %s\n", onOff(s.Fullscreen))
	fmt.Printf("VSync:         %s\n", onOff(s.VSync))
	fmt.Printf("Antialiasing:  %dx\n", s.Antialiasing)
	fmt.Printf("Driver:        %s\n", s.Driver)
	for _, a := range settings.Actions {
		fmt.Printf("%-14s %s\n", a.String()+":", describeKey(s.Keys[a.String()]))
	}
	fmt.Printf("File:          %s\n", s.Path)
	if !s.CanPersist {
		printWarn("Warning: settings cannot be saved on this machine")
	}
	if s.LoadError != "" {
		fmt.Printf("Load error:    %s\n", s.LoadError)
	}
}

func (c *Console) handleSet(args []string) {
	if len(args) < 2 {
		fmt.Println("Usage: set <fullscreen|vsync|aa|resolution|driver|forward|backward|left|right> <value>")
		return
	}
	req, err := parseSetCommand(args[0], args[1])
	if err != nil {
		printError(err)
		return
	}
	res, err := c.client.UpdateSettings(req)
	if err != nil {
		printError(err)
		return
	}
	if res.Persisted {
		printOK("Settings saved.")
	} else {
		printWarn("Settings applied for this run but could not be saved.")
	}
	if strings.EqualFold(args[0], "resolution") || strings.EqualFold(args[0], "driver") ||
		strings.EqualFold(args[0], "fullscreen") || strings.EqualFold(args[0], "aa") {
		printWarn("Note: video changes take effect after a restart.")
	}
}

var errUnknownSetting = errors.New("unknown setting")

// parseSetCommand turns "set <field> <value>" into a settings update.
func parseSetCommand(field, value string) (models.SettingsUpdate, error) {
	var req models.SettingsUpdate
	switch strings.ToLower(field) {
	case "fullscreen":
		on, err := parseOnOff(value)
		if err != nil {
			return req, err
		}
		req.Fullscreen = &on
	case "vsync":
		on, err := parseOnOff(value)
		if err != nil {
			return req, err
		}
		req.VSync = &on
	case "aa", "antialiasing":
		n, err := strconv.ParseUint(strings.TrimSuffix(strings.ToLower(value), "x"), 10, 8)
		if err != nil || !settings.ValidAntialiasing(uint8(n)) {
			return req, fmt.Errorf("antialiasing must be one of %v", settings.AntialiasingFactors)
		}
		aa := uint8(n)
		req.Antialiasing = &aa
	case "resolution", "res":
		if _, err := settings.ParseResolution(value); err != nil {
			return req, err
		}
		req.Resolution = &value
	case "driver":
		d, err := settings.ParseDriver(value)
		if err != nil {
			return req, err
		}
		name := d.String()
		req.Driver = &name
	default:
		action, ok := settings.ParseAction(field)
		if !ok {
			return req, fmt.Errorf("%w: %s", errUnknownSetting, field)
		}
		char, err := keyChar(value)
		if err != nil {
			return req, err
		}
		req.Keys = map[string]string{action.String(): char}
	}
	return req, nil
}

// keyChar accepts a bindable character or an arrow name.
func keyChar(value string) (string, error) {
	switch strings.ToLower(value) {
	case "up":
		return string(settings.CharUp), nil
	case "down":
		return string(settings.CharDown), nil
	case "left":
		return string(settings.CharLeft), nil
	case "right":
		return string(settings.CharRight), nil
	}
	if utf8.RuneCountInString(value) != 1 {
		return "", fmt.Errorf("key must be a single character or up/down/left/right")
	}
	r, _ := utf8.DecodeRuneInString(value)
	if _, err := settings.KeyCodeFor(r); err != nil {
		return "", err
	}
	return strings.ToLower(value), nil
}

func parseOnOff(value string) (bool, error) {
	switch strings.ToLower(value) {
	case "on", "yes", "true", "1":
		return true, nil
	case "off", "no", "false", "0":
		return false, nil
	}
	return false, fmt.Errorf("expected on or off, got %q", value)
}

func (c *Console) handleCancel() {
	tr, err := c.client.CancelSettings()
	if err != nil {
		printError(err)
		return
	}
	printTransition(tr)
}

func (c *Console) showScene() {
	s, err := c.client.GetScene()
	if err != nil {
		printError(err)
		return
	}
	fmt.Println()
	PrintBanner("Scene")
	fmt.Printf("\nOrigin:   %s\n", s.Origin)
	fmt.Printf("Loading:  %s", s.Loading.Image)
	if s.Loading.Stretch {
		fmt.Print(" (stretched)")
	}
	fmt.Println()
	fmt.Printf("Caption:  %s\n", s.Caption)
	if ms, ok := s.Descriptor["models"].([]interface{}); ok {
		fmt.Printf("Models:   %d\n", len(ms))
	}
}

func (c *Console) showGraph() {
	g, err := c.client.GetGraph()
	if err != nil {
		printError(err)
		return
	}

	fmt.Println()
	PrintBanner(fmt.Sprintf("Scene Graph: %d nodes, %d exhibits", len(g.Nodes), g.ExhibitCount()))
	fmt.Println()

	fmt.Printf("%-6s %-12s %-36s %-26s %-8s\n", "ID", "Kind", "Mesh", "Material", "Visible")
	fmt.Println(strings.Repeat("-", 92))
	for _, n := range g.Nodes {
		fmt.Printf("%-6d %-12s %-36s %-26s %-8s\n",
			n.ID, n.Kind, truncate(n.Mesh, 36), n.Material, yesNo(n.Visible))
	}
	fmt.Printf("\nCamera: start %s, look at %s\n", formatVec(g.Camera.Position), formatVec(g.Camera.Target))

	skyFaces := make([]string, 0, len(g.Skybox))
	for face := range g.Skybox {
		skyFaces = append(skyFaces, face)
	}
	sort.Strings(skyFaces)
	fmt.Printf("Skybox: %s\n", strings.Join(skyFaces, ", "))
}

func (c *Console) handleKey(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: key <esc|f1>")
		return
	}
	switch strings.ToLower(args[0]) {
	case "esc", "escape":
		if !c.confirm("Escape while walking quits the kiosk. Continue?") {
			return
		}
		c.sendEvent(state.Event{Type: state.EventEscape})
	case "f1":
		c.sendEvent(state.Event{Type: state.EventF1})
	default:
		fmt.Printf("Unknown key: %s\n", args[0])
	}
}

func (c *Console) handleTarget(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: target <id>")
		return
	}
	id, err := strconv.Atoi(args[0])
	if err != nil || id < 0 {
		fmt.Println("Invalid ID")
		return
	}
	c.sendEvent(state.Event{Type: state.EventTarget, NodeID: id})
}

func (c *Console) sendEvent(ev state.Event) {
	res, err := c.client.SendEvent(ev)
	if err != nil {
		printError(err)
		return
	}
	printTransition(&res.Transition)
	if res.Exhibit != nil {
		printExhibit(res.Exhibit)
	}
}

func printTransition(tr *state.Transition) {
	if !tr.Handled {
		fmt.Printf("%s ignored in %s\n", tr.Event.Type, tr.From)
		return
	}
	fmt.Printf("%s: %s -> %s\n", tr.Event.Type, tr.From, tr.To)
	if tr.Quit {
		printWarn("The kiosk is quitting.")
	}
}

func (c *Console) handleDiag(args []string) {
	level := ""
	if len(args) > 0 {
		if strings.EqualFold(args[0], "clear") {
			if err := c.client.ClearDiagnostics(); err != nil {
				printError(err)
				return
			}
			printOK("Diagnostics cleared.")
			return
		}
		level = args[0]
	}

	list, err := c.client.ListDiagnostics(level)
	if err != nil {
		printError(err)
		return
	}
	if len(list) == 0 {
		fmt.Println("No diagnostics.")
		return
	}

	fmt.Printf("%-5s %-20s %-6s %-24s %s\n", "ID", "Time", "Level", "Source", "Message")
	fmt.Println(strings.Repeat("-", 90))
	for _, d := range list {
		fmt.Printf("%-5d %-20s %-6s %-24s %s\n",
			d.ID, d.Timestamp.Format("2006-01-02 15:04:05"), d.Level, truncate(d.Source, 24), d.Message)
		if d.Detail != "" {
			fmt.Printf("      %s\n", d.Detail)
		}
	}
}

func (c *Console) handleServers(args []string) {
	if c.config == nil {
		fmt.Println("Console configuration unavailable.")
		return
	}

	if len(args) == 0 {
		fmt.Printf("Known kiosks (%s):\n", c.config.Path())
		for _, name := range c.config.Names() {
			s := c.config.Servers[name]
			marker := " "
			if name == c.config.DefaultServer {
				marker = "*"
			}
			fmt.Printf(" %s %-15s %-30s %s\n", marker, name, s.URL, s.Description)
		}
		return
	}

	var err error
	switch strings.ToLower(args[0]) {
	case "add":
		if len(args) < 3 {
			fmt.Println("Usage: servers add <name> <url> [description]")
			return
		}
		err = c.config.AddServer(args[1], args[2], strings.Join(args[3:], " "))
	case "use":
		if len(args) < 2 {
			fmt.Println("Usage: servers use <name>")
			return
		}
		err = c.config.SetDefault(args[1])
	case "rm", "remove":
		if len(args) < 2 {
			fmt.Println("Usage: servers rm <name>")
			return
		}
		err = c.config.RemoveServer(args[1])
	default:
		fmt.Printf("Unknown servers command: %s\n", args[0])
		return
	}
	if err != nil {
		printError(err)
		return
	}
	printOK("Saved.")
}

func (c *Console) handleShutdown() {
	code, expiresAt, err := c.client.GenerateShutdownCode()
	if err != nil {
		printError(err)
		return
	}

	fmt.Printf("Confirmation code: %s (valid until %s)\n", code, expiresAt.Format(time.Kitchen))
	input, cancelled := c.readInputWithCancel("Type the code to shut the kiosk down", "")
	if cancelled || input == "" {
		fmt.Println("Shutdown cancelled.")
		return
	}
	if err := c.client.VerifyShutdown(input); err != nil {
		printError(err)
		return
	}
	printOK("Shutdown initiated.")
	c.running = false
}

// clearScreen clears the console
func (c *Console) clearScreen() {
	fmt.Print("\033[H\033[2J")
}

func (c *Console) confirm(question string) bool {
	answer, cancelled := c.readInputWithCancel(question+" (y/N)", "")
	return !cancelled && strings.EqualFold(answer, "y")
}

// readInputWithCancel reads input and supports cancellation
func (c *Console) readInputWithCancel(prompt, defaultValue string) (string, bool) {
	if defaultValue != "" {
		c.rl.SetPrompt(fmt.Sprintf("%s [%s]: ", prompt, defaultValue))
	} else {
		c.rl.SetPrompt(fmt.Sprintf("%s: ", prompt))
	}

	line, err := c.rl.Readline()
	c.rl.SetPrompt("> ") // Restore default prompt

	if err != nil {
		if err == readline.ErrInterrupt {
			return "", true
		}
		return defaultValue, false
	}

	input := strings.TrimSpace(line)
	if input == "" && defaultValue != "" {
		return defaultValue, false
	}
	return input, false
}
