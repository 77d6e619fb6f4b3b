// ABOUTME: Operator CLI and composition root for estatedesk
// ABOUTME: Wires config, key-value stores, auth service, and the SQLite store

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/joho/godotenv"

	"github.com/diamondcity/estatedesk/internal/auth"
	"github.com/diamondcity/estatedesk/internal/config"
	"github.com/diamondcity/estatedesk/internal/kvstore"
	"github.com/diamondcity/estatedesk/internal/store"
)

// Version is set by goreleaser at build time.
var version = "dev"

const banner = `
           _        _           _           _
   ___ ___| |_ __ _| |_ ___  __| | ___  ___| | __
  / _ \ __| __/ _' | __/ _ \/ _' |/ _ \/ __| |/ /
 |  __\__ \ || (_| | ||  __/ (_| |  __/\__ \   <
  \___|___/\__\__,_|\__\___|\__,_|\___||___/_|\_\
`

// getConfigPath returns the path to the estatedesk config file.
// Priority: ESTATEDESK_CONFIG env var > XDG_CONFIG_HOME/estatedesk/config.yaml > ~/.config/estatedesk/config.yaml
func getConfigPath() string {
	if envPath := os.Getenv("ESTATEDESK_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "config.yaml" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "estatedesk", "config.yaml")
}

// getDataPath returns the path to the estatedesk data directory.
// Priority: ESTATEDESK_DATA env var > XDG_DATA_HOME/estatedesk > ~/.local/share/estatedesk
func getDataPath() string {
	if envPath := os.Getenv("ESTATEDESK_DATA"); envPath != "" {
		return envPath
	}

	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "data" // fallback
		}
		dataDir = filepath.Join(homeDir, ".local", "share")
	}

	return filepath.Join(dataDir, "estatedesk")
}

// app holds the wired-up services. The stores are constructed once here
// and passed by reference; nothing else opens the underlying files.
type app struct {
	cfg  *config.Config
	auth *auth.Service
	db   *store.SQLiteStore
}

func main() {
	// Optional .env for local development; absence is fine
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	if cmd == "help" || cmd == "-h" || cmd == "--help" {
		printUsage()
		return
	}
	if cmd == "version" {
		fmt.Println("estatedesk", version)
		return
	}

	a, err := newApp()
	if err != nil {
		color.Red("Error: %v\n", err)
		os.Exit(1)
	}
	defer a.db.Close()

	ctx := context.Background()

	switch cmd {
	case "signup":
		err = cmdSignUp(a, args)
	case "signin":
		err = cmdSignIn(a, args)
	case "signout":
		a.auth.SignOut()
		color.Green("✓ Signed out\n")
	case "whoami":
		err = cmdWhoAmI(a)
	case "theme":
		err = cmdTheme(a, args)
	case "estates":
		err = cmdEstates(ctx, a, args)
	case "properties":
		err = cmdProperties(ctx, a, args)
	case "visitors":
		err = cmdVisitors(ctx, a, args)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		color.Red("Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	cyan := color.New(color.FgCyan)
	yellow := color.New(color.FgYellow)

	cyan.Print(banner)
	fmt.Println()
	fmt.Println("Usage: estatedesk <command> [args]")
	fmt.Println()
	yellow.Println("Auth:")
	fmt.Println("  signup --first <name> --last <name> --email <addr> --password <pw> [--phone <n>] [--admin]")
	fmt.Println("  signin --email <addr> --password <pw> [--remember]")
	fmt.Println("  signout")
	fmt.Println("  whoami                     Show the current session")
	fmt.Println("  theme [light|dark]         Show or set the theme preference")
	fmt.Println()
	yellow.Println("Records:")
	fmt.Println("  estates [list]             List estates (--featured to filter)")
	fmt.Println("  estates add --name <n> [--address <a>] [--description <d>]")
	fmt.Println("  estates show <id>")
	fmt.Println("  estates delete <id>        Removes its properties and visitors too")
	fmt.Println("  properties [list]          List properties (--estate <id> to filter)")
	fmt.Println("  properties add --estate <id> --name <n> [--type <t>] [--address <a>] [--status <s>]")
	fmt.Println("  properties delete <id>     Removes its visitors too")
	fmt.Println("  visitors [list]            List visitors (--property <id>, --status <s> to filter)")
	fmt.Println("  visitors add --property <id> --name <n> --phone <p> --address <a> --date <YYYY-MM-DD> --time <HH:MM>")
	fmt.Println("  visitors arrive <id>       Mark a visitor as arrived")
	fmt.Println("  visitors depart <id>       Mark a visitor as departed")
	fmt.Println("  visitors delete <id>")
	fmt.Println()
	yellow.Println("Environment:")
	fmt.Println("  ESTATEDESK_CONFIG          Config file path (default: ~/.config/estatedesk/config.yaml)")
	fmt.Println("  ESTATEDESK_DATA            Data directory (default: ~/.local/share/estatedesk)")
	fmt.Println()
}

// newApp loads configuration and constructs the stores and services.
func newApp() (*app, error) {
	var cfg *config.Config
	configPath := getConfigPath()
	if _, err := os.Stat(configPath); err == nil {
		cfg, err = config.Load(configPath)
		if err != nil {
			return nil, err
		}
	} else {
		cfg = config.Default(getDataPath())
	}

	setupLogging(cfg.Logging)

	key, err := kvstore.LoadOrCreateKey(cfg.Storage.CredentialsKeyPath)
	if err != nil {
		return nil, fmt.Errorf("loading credential key: %w", err)
	}

	credentials, err := kvstore.NewSecureStore(cfg.Storage.CredentialsPath, key)
	if err != nil {
		return nil, fmt.Errorf("opening credential store: %w", err)
	}

	session, err := kvstore.NewFileStore(cfg.Storage.SessionPath)
	if err != nil {
		return nil, fmt.Errorf("opening session store: %w", err)
	}

	db, err := store.NewSQLiteStore(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	return &app{
		cfg:  cfg,
		auth: auth.NewService(credentials, session),
		db:   db,
	}, nil
}

// setupLogging configures the default slog logger from config.
func setupLogging(cfg config.LoggingConfig) {
	level := slog.LevelInfo
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// flagValue scans args for "--name value" (or a short alias) and returns the value.
func flagValue(args []string, name, short string) string {
	for i := 0; i < len(args)-1; i++ {
		if args[i] == name || (short != "" && args[i] == short) {
			return args[i+1]
		}
	}
	return ""
}

// hasFlag reports whether a bare flag is present.
func hasFlag(args []string, name string) bool {
	for _, a := range args {
		if a == name {
			return true
		}
	}
	return false
}

func cmdSignUp(a *app, args []string) error {
	first := flagValue(args, "--first", "-f")
	last := flagValue(args, "--last", "-l")
	email := flagValue(args, "--email", "-e")
	password := flagValue(args, "--password", "-p")
	phone := flagValue(args, "--phone", "")
	role := auth.RoleUser
	if hasFlag(args, "--admin") {
		role = auth.RoleAdmin
	}

	if first == "" || last == "" || email == "" || password == "" {
		return fmt.Errorf("usage: signup --first <name> --last <name> --email <addr> --password <pw> [--phone <n>] [--admin]")
	}

	if err := a.auth.SignUp(first, last, email, password, phone, role); err != nil {
		return err
	}

	color.Green("✓ Account created for %s\n", auth.NormalizeEmail(email))
	return nil
}

func cmdSignIn(a *app, args []string) error {
	email := flagValue(args, "--email", "-e")
	password := flagValue(args, "--password", "-p")
	remember := hasFlag(args, "--remember")

	if email == "" || password == "" {
		return fmt.Errorf("usage: signin --email <addr> --password <pw> [--remember]")
	}

	if err := a.auth.SignIn(email, password, remember); err != nil {
		return err
	}

	color.Green("✓ Signed in as %s\n", auth.NormalizeEmail(email))
	return nil
}

func cmdWhoAmI(a *app) error {
	cyan := color.New(color.FgCyan)

	fmt.Println()
	cyan.Println("  Session")
	cyan.Println("  -------")

	if !a.auth.IsLoggedIn() {
		fmt.Println("  Not signed in")
		if remembered := a.auth.RememberedEmail(); remembered != "" {
			fmt.Printf("  Remembered email: %s\n", remembered)
		}
		fmt.Println()
		return nil
	}

	fmt.Printf("  Email:  %s\n", a.auth.CurrentUserEmail())
	fmt.Printf("  Name:   %s %s\n", a.auth.UserFirstName(), a.auth.UserLastName())
	if phone := a.auth.UserPhone(); phone != "" {
		fmt.Printf("  Phone:  %s\n", phone)
	}
	fmt.Printf("  Role:   %s\n", a.auth.UserRole())
	fmt.Println()
	return nil
}

func cmdTheme(a *app, args []string) error {
	if len(args) == 0 {
		mode := a.auth.ThemeMode()
		if mode == "" {
			mode = "(default)"
		}
		fmt.Printf("Theme: %s\n", mode)
		return nil
	}

	mode := args[0]
	if mode != "light" && mode != "dark" {
		return fmt.Errorf("unknown theme %q (use light or dark)", mode)
	}
	a.auth.SetThemeMode(mode)
	color.Green("✓ Theme set to %s\n", mode)
	return nil
}

func cmdEstates(ctx context.Context, a *app, args []string) error {
	subcmd := "list"
	if len(args) > 0 && !strings.HasPrefix(args[0], "--") {
		subcmd = args[0]
		args = args[1:]
	}

	switch subcmd {
	case "list", "ls":
		return cmdEstatesList(ctx, a, args)
	case "add", "create":
		return cmdEstatesAdd(ctx, a, args)
	case "show":
		return cmdEstatesShow(ctx, a, args)
	case "delete", "rm", "remove":
		return cmdEstatesDelete(ctx, a, args)
	default:
		return fmt.Errorf("unknown estates subcommand: %s (use list, add, show, delete)", subcmd)
	}
}

func cmdEstatesList(ctx context.Context, a *app, args []string) error {
	var filter store.EstateFilter
	if hasFlag(args, "--featured") {
		featured := true
		filter.Featured = &featured
	}

	estates, err := a.db.ListEstates(ctx, filter)
	if err != nil {
		return err
	}

	cyan := color.New(color.FgCyan)
	fmt.Println()
	cyan.Println("  Estates")
	cyan.Println("  -------")

	if len(estates) == 0 {
		fmt.Println("  (no estates)")
		fmt.Println()
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  ID\tNAME\tFEATURED\tADDED")
	fmt.Fprintln(w, "  --\t----\t--------\t-----")
	for _, e := range estates {
		featured := ""
		if e.IsFeatured {
			featured = "yes"
		}
		fmt.Fprintf(w, "  %s\t%s\t%s\t%s\n",
			truncate(e.ID, 12), truncate(e.Name, 32), featured, e.DateAdded.Format("Jan 02 2006"))
	}
	w.Flush()
	fmt.Println()
	return nil
}

func cmdEstatesAdd(ctx context.Context, a *app, args []string) error {
	estate := &store.Estate{
		Name:        flagValue(args, "--name", "-n"),
		Address:     flagValue(args, "--address", "-a"),
		Description: flagValue(args, "--description", "-d"),
	}
	if estate.Name == "" {
		return fmt.Errorf("usage: estates add --name <n> [--address <a>] [--description <d>]")
	}

	if err := a.db.InsertEstate(ctx, estate); err != nil {
		return err
	}

	color.Green("✓ Created estate: %s\n", estate.ID)
	return nil
}

func cmdEstatesShow(ctx context.Context, a *app, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: estates show <id>")
	}

	estate, err := a.db.GetEstate(ctx, args[0])
	if err != nil {
		return err
	}

	cyan := color.New(color.FgCyan)
	fmt.Println()
	cyan.Printf("  %s\n", estate.Name)
	fmt.Printf("  ID:          %s\n", estate.ID)
	if estate.Address != "" {
		fmt.Printf("  Address:     %s\n", estate.Address)
	}
	if estate.Description != "" {
		fmt.Printf("  Description: %s\n", estate.Description)
	}
	fmt.Printf("  Added:       %s\n", estate.DateAdded.Format(time.RFC3339))

	if estate.Featured != nil {
		fmt.Println()
		cyan.Println("  Featured profile")
		fmt.Printf("  %s\n", estate.Featured.CompanyProfile)
		for _, pt := range estate.Featured.PropertyTypes {
			fmt.Printf("    - %s: %d bed / %d bath, %d sqm\n", pt.Name, pt.Beds, pt.Baths, pt.Sqm)
		}
	}
	fmt.Println()
	return nil
}

func cmdEstatesDelete(ctx context.Context, a *app, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: estates delete <id>")
	}

	if err := a.db.DeleteEstate(ctx, args[0]); err != nil {
		return err
	}

	color.Green("✓ Deleted estate %s and its properties and visitors\n", args[0])
	return nil
}

func cmdProperties(ctx context.Context, a *app, args []string) error {
	subcmd := "list"
	if len(args) > 0 && !strings.HasPrefix(args[0], "--") {
		subcmd = args[0]
		args = args[1:]
	}

	switch subcmd {
	case "list", "ls":
		return cmdPropertiesList(ctx, a, args)
	case "add", "create":
		return cmdPropertiesAdd(ctx, a, args)
	case "delete", "rm", "remove":
		return cmdPropertiesDelete(ctx, a, args)
	default:
		return fmt.Errorf("unknown properties subcommand: %s (use list, add, delete)", subcmd)
	}
}

func cmdPropertiesList(ctx context.Context, a *app, args []string) error {
	estateID := flagValue(args, "--estate", "-e")

	properties, err := a.db.ListProperties(ctx, estateID)
	if err != nil {
		return err
	}

	cyan := color.New(color.FgCyan)
	fmt.Println()
	cyan.Println("  Properties")
	cyan.Println("  ----------")

	if len(properties) == 0 {
		fmt.Println("  (no properties)")
		fmt.Println()
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  ID\tNAME\tTYPE\tSTATUS\tESTATE")
	fmt.Fprintln(w, "  --\t----\t----\t------\t------")
	for _, p := range properties {
		fmt.Fprintf(w, "  %s\t%s\t%s\t%s\t%s\n",
			truncate(p.ID, 12), truncate(p.Name, 28), p.Type, p.Status, truncate(p.EstateID, 12))
	}
	w.Flush()
	fmt.Println()
	return nil
}

func cmdPropertiesAdd(ctx context.Context, a *app, args []string) error {
	property := &store.Property{
		EstateID: flagValue(args, "--estate", "-e"),
		Name:     flagValue(args, "--name", "-n"),
		Type:     flagValue(args, "--type", "-t"),
		Address:  flagValue(args, "--address", "-a"),
		Status:   flagValue(args, "--status", "-s"),
		OwnerID:  a.auth.CurrentUserEmail(),
	}
	if property.EstateID == "" || property.Name == "" {
		return fmt.Errorf("usage: properties add --estate <id> --name <n> [--type <t>] [--address <a>] [--status <s>]")
	}

	if err := a.db.InsertProperty(ctx, property); err != nil {
		return err
	}

	color.Green("✓ Created property: %s\n", property.ID)
	return nil
}

func cmdPropertiesDelete(ctx context.Context, a *app, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: properties delete <id>")
	}

	if err := a.db.DeleteProperty(ctx, args[0]); err != nil {
		return err
	}

	color.Green("✓ Deleted property %s and its visitors\n", args[0])
	return nil
}

func cmdVisitors(ctx context.Context, a *app, args []string) error {
	subcmd := "list"
	if len(args) > 0 && !strings.HasPrefix(args[0], "--") {
		subcmd = args[0]
		args = args[1:]
	}

	switch subcmd {
	case "list", "ls":
		return cmdVisitorsList(ctx, a, args)
	case "add", "create":
		return cmdVisitorsAdd(ctx, a, args)
	case "arrive":
		return cmdVisitorsSetStatus(ctx, a, args, store.VisitorStatusArrived)
	case "depart":
		return cmdVisitorsSetStatus(ctx, a, args, store.VisitorStatusDeparted)
	case "delete", "rm", "remove":
		return cmdVisitorsDelete(ctx, a, args)
	default:
		return fmt.Errorf("unknown visitors subcommand: %s (use list, add, arrive, depart, delete)", subcmd)
	}
}

func cmdVisitorsList(ctx context.Context, a *app, args []string) error {
	filter := store.VisitorFilter{
		PropertyID: flagValue(args, "--property", "-p"),
		Status:     flagValue(args, "--status", "-s"),
	}

	visitors, err := a.db.ListVisitors(ctx, filter)
	if err != nil {
		return err
	}

	cyan := color.New(color.FgCyan)
	fmt.Println()
	cyan.Println("  Visitors")
	cyan.Println("  --------")

	if len(visitors) == 0 {
		fmt.Println("  (no visitors)")
		fmt.Println()
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  ID\tNAME\tEXPECTED\tSTATUS\tGATE PASS")
	fmt.Fprintln(w, "  --\t----\t--------\t------\t---------")
	for _, v := range visitors {
		fmt.Fprintf(w, "  %s\t%s\t%s %s\t%s\t%s\n",
			truncate(v.ID, 12), truncate(v.VisitorName, 24), v.ExpectedDate, v.ExpectedTime, v.Status, v.GatePassCode)
	}
	w.Flush()
	fmt.Println()
	return nil
}

func cmdVisitorsAdd(ctx context.Context, a *app, args []string) error {
	visitor := &store.Visitor{
		PropertyID:      flagValue(args, "--property", "-p"),
		VisitorName:     flagValue(args, "--name", "-n"),
		VisitorPhone:    flagValue(args, "--phone", ""),
		AddressVisiting: flagValue(args, "--address", "-a"),
		ExpectedDate:    flagValue(args, "--date", "-d"),
		ExpectedTime:    flagValue(args, "--time", "-t"),
		OwnerID:         a.auth.CurrentUserEmail(),
	}
	if visitor.PropertyID == "" || visitor.VisitorName == "" || visitor.VisitorPhone == "" ||
		visitor.AddressVisiting == "" || visitor.ExpectedDate == "" || visitor.ExpectedTime == "" {
		return fmt.Errorf("usage: visitors add --property <id> --name <n> --phone <p> --address <a> --date <YYYY-MM-DD> --time <HH:MM>")
	}

	if _, err := time.Parse("2006-01-02", visitor.ExpectedDate); err != nil {
		return fmt.Errorf("invalid --date %q, want YYYY-MM-DD", visitor.ExpectedDate)
	}
	if _, err := time.Parse("15:04", visitor.ExpectedTime); err != nil {
		return fmt.Errorf("invalid --time %q, want HH:MM", visitor.ExpectedTime)
	}

	if err := a.db.AddVisitor(ctx, visitor); err != nil {
		return err
	}

	color.Green("✓ Registered visitor: %s\n", visitor.ID)
	fmt.Printf("  Gate pass code: %s\n", visitor.GatePassCode)
	return nil
}

func cmdVisitorsSetStatus(ctx context.Context, a *app, args []string, status string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: visitors %s <id>", strings.ToLower(status))
	}

	visitor, err := a.db.GetVisitor(ctx, args[0])
	if err != nil {
		return err
	}

	visitor.Status = status
	if err := a.db.UpdateVisitor(ctx, visitor); err != nil {
		return err
	}

	color.Green("✓ Visitor %s marked %s\n", visitor.VisitorName, status)
	return nil
}

func cmdVisitorsDelete(ctx context.Context, a *app, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: visitors delete <id>")
	}

	if err := a.db.DeleteVisitor(ctx, args[0]); err != nil {
		return err
	}

	color.Green("✓ Deleted visitor %s\n", args[0])
	return nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
