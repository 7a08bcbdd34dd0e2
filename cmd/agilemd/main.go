package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/danrfletcher/agilemd/internal/assign"
	"github.com/danrfletcher/agilemd/internal/buffer"
	"github.com/danrfletcher/agilemd/internal/index"
	agilemcp "github.com/danrfletcher/agilemd/internal/mcp"
	"github.com/danrfletcher/agilemd/internal/taskline"
	"github.com/danrfletcher/agilemd/internal/team"
	"github.com/danrfletcher/agilemd/internal/ui"
	"github.com/danrfletcher/agilemd/internal/watch"
)

// Set via ldflags at build time
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func buildVersion() string {
	if commit == "none" {
		return version
	}
	return fmt.Sprintf("%s (%s, %s)", version, commit, date)
}

func main() {
	var noColor bool

	rootCmd := &cobra.Command{
		Use:   "agilemd",
		Short: "agilemd — task ownership for markdown vaults",
		Long:  "A local CLI that keeps task ownership consistent across markdown files: owners inherit down the task tree, and changes cascade without silently re-owning descendants.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			ui.Init(noColor)
		},
	}

	rootCmd.Version = buildVersion()
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	rootCmd.AddGroup(
		&cobra.Group{ID: "core", Title: "Core Commands:"},
		&cobra.Group{ID: "config", Title: "Configuration:"},
	)

	for _, c := range []*cobra.Command{assignCmd(), cascadeCmd(), fmtCmd(), treeCmd(), watchCmd()} {
		c.GroupID = "core"
		rootCmd.AddCommand(c)
	}
	for _, c := range []*cobra.Command{initCmd(), configCmd(), memberCmd(), doctorCmd()} {
		c.GroupID = "config"
		rootCmd.AddCommand(c)
	}
	rootCmd.AddCommand(mcpServeCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig returns the stored config, or defaults when agilemd was never
// initialized. File operations work without a roster; rendering falls back
// to aliases as display names.
func loadConfig() *team.Config {
	cfg, err := team.Load(team.Home())
	if err != nil {
		def := team.DefaultConfig()
		return &def
	}
	return cfg
}

func newService() *assign.Service {
	return assign.NewService(index.NewService(), loadConfig())
}

// resolveTarget turns a line number or ^blockid into a 1-based line.
func resolveTarget(tree *index.Tree, target string) (int, error) {
	if id, ok := strings.CutPrefix(target, "^"); ok {
		if n, found := tree.ByID(id); found {
			return tree.Nodes[n].Line, nil
		}
		return 0, fmt.Errorf("no task with block id ^%s", id)
	}
	line, err := strconv.Atoi(target)
	if err != nil || line < 1 {
		return 0, fmt.Errorf("target must be a line number or ^blockid, got %q", target)
	}
	return line, nil
}

func printEdits(edits assign.EditSet, snap *buffer.Snapshot) {
	if edits.Empty() {
		ui.EmptyState("no edits needed")
		return
	}
	var lines []int
	for l := range edits.Set {
		lines = append(lines, l)
	}
	for l := range edits.Remove {
		lines = append(lines, l)
	}
	sort.Ints(lines)
	for _, l := range lines {
		text, _ := snap.Line(l)
		if alias, ok := edits.Set[l]; ok {
			fmt.Fprintf(os.Stderr, "  %s line %d → %s\n", ui.Pin("pin"), l+1, ui.Owner(alias))
		} else {
			fmt.Fprintf(os.Stderr, "  %s line %d\n", ui.Dim("clear"), l+1)
		}
		fmt.Fprintf(os.Stderr, "    %s\n", ui.Dim(strings.TrimSpace(text)))
	}
}

func assignCmd() *cobra.Command {
	var dryRun, yes bool

	cmd := &cobra.Command{
		Use:   "assign <file> <line|^blockid> <alias>",
		Short: "Set a task's owner and cascade the change through its subtree",
		Long: "Sets the explicit owner of a task. Descendants whose effective owner would " +
			"drift get their prior owner pinned as an explicit mark; marks the change makes " +
			"redundant are removed. An empty alias (\"\") clears the explicit owner.",
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, target, alias := args[0], args[1], args[2]

			svc := newService()
			snap, err := buffer.OpenSnapshot(path)
			if err != nil {
				return err
			}
			tree := svc.Trees.RefreshFrom(path, snap.Value())
			line, err := resolveTarget(tree, target)
			if err != nil {
				return err
			}

			edits, err := svc.AssignLine(path, snap, line, alias)
			if err != nil {
				// Best effort: a missing node means nothing to do, not a failure.
				ui.Logger.Debug("assign skipped", "path", path, "line", line, "err", err)
				ui.EmptyState("no task on that line; nothing to do")
				return nil
			}

			printEdits(edits, snap)
			if dryRun || !snap.Dirty() {
				return nil
			}
			if len(edits.Set)+len(edits.Remove) > 5 && !yes {
				ok, err := ui.Confirm(fmt.Sprintf("Apply %d line edits to %s?", len(edits.Set)+len(edits.Remove), path))
				if err != nil || !ok {
					ui.Warning("aborted, file unchanged")
					return nil
				}
			}
			if err := snap.Flush(); err != nil {
				return err
			}
			ui.Success(fmt.Sprintf("updated %s", path))
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show the edit set without writing")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

func cascadeCmd() *cobra.Command {
	var from int
	var oldAlias, newAlias string
	var sweep bool

	cmd := &cobra.Command{
		Use:   "cascade <file>",
		Short: "Run the ownership cascade for an externally applied change",
		Long: "Recomputes ownership consistency after another actor already edited the file. " +
			"With --from/--old/--new, cascades that specific change. With --sweep, removes " +
			"every explicit owner mark that inheritance would reproduce anyway.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			svc := newService()
			snap, err := buffer.OpenSnapshot(path)
			if err != nil {
				return err
			}

			var edits assign.EditSet
			if sweep {
				edits, err = svc.Sweep(path, snap)
			} else {
				if from < 1 {
					return fmt.Errorf("--from is required unless --sweep is set")
				}
				// The new alias is already on the line; reconstruct the
				// pre-change snapshot by putting the old one back.
				before := assign.Snapshot(snap.Value())
				if oldAlias == "" {
					delete(before, from-1)
				} else {
					before[from-1] = oldAlias
				}
				edits, err = svc.CascadeExternal(path, snap, from, oldAlias, newAlias, before)
			}
			if err != nil {
				ui.Logger.Debug("cascade skipped", "path", path, "err", err)
				ui.EmptyState("nothing to cascade")
				return nil
			}

			printEdits(edits, snap)
			if err := snap.Flush(); err != nil {
				return err
			}
			if snap.Dirty() {
				ui.Success(fmt.Sprintf("updated %s", path))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&from, "from", 0, "1-based line of the changed task")
	cmd.Flags().StringVar(&oldAlias, "old", "", "Explicit alias before the change (empty if none)")
	cmd.Flags().StringVar(&newAlias, "new", "", "Explicit alias after the change (empty if cleared)")
	cmd.Flags().BoolVar(&sweep, "sweep", false, "Remove redundant explicit marks across the whole file")
	return cmd
}

func fmtCmd() *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "fmt <file>...",
		Short: "Rewrite task lines in canonical field order",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := newService()
			dirty := false
			for _, path := range args {
				snap, err := buffer.OpenSnapshot(path)
				if err != nil {
					return err
				}
				n := svc.Format(snap)
				if n == 0 {
					continue
				}
				dirty = true
				if check {
					ui.Warning(fmt.Sprintf("%s: %d lines not canonical", path, n))
					continue
				}
				if err := snap.Flush(); err != nil {
					return err
				}
				ui.Success(fmt.Sprintf("%s: rewrote %d lines", path, n))
			}
			if check && dirty {
				return fmt.Errorf("files are not canonically formatted")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "Report non-canonical lines without rewriting")
	return cmd
}

func treeCmd() *cobra.Command {
	var markdown bool

	cmd := &cobra.Command{
		Use:   "tree <file>",
		Short: "Show the task tree with effective owners",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			svc := newService()
			snap, err := buffer.OpenSnapshot(path)
			if err != nil {
				return err
			}
			tree := svc.Trees.RefreshFrom(path, snap.Value())
			aliases := assign.Snapshot(snap.Value())
			if len(tree.Nodes) == 0 {
				ui.EmptyState("no tasks found")
				return nil
			}

			var md strings.Builder
			for i, n := range tree.Nodes {
				depth := 0
				for p := n.Parent; p != -1; p = tree.Nodes[p].Parent {
					depth++
				}
				text, _ := snap.Line(n.Line - 1)
				body := taskline.Parse(text).Body
				owner := assign.Effective(tree, i, aliases)
				origin := "inherited"
				if aliases[n.Line-1] != "" {
					origin = "explicit"
				}
				if owner == "" {
					owner, origin = "unassigned", ""
				}

				indent := strings.Repeat("  ", depth)
				if markdown {
					fmt.Fprintf(&md, "%s- **%s** — %s %s\n", indent, body, owner, origin)
					continue
				}
				line := fmt.Sprintf("%s%s  %s", indent, body, ui.Owner(owner))
				if origin != "" {
					line += " " + ui.Dim("("+origin+")")
				}
				fmt.Fprintln(os.Stdout, line)
			}
			if markdown {
				ui.RenderMarkdown(md.String())
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&markdown, "markdown", false, "Render the tree through the markdown renderer")
	return cmd
}

func watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch [path]...",
		Short: "Watch vault directories and keep files dedup-clean",
		Long: "Watches the given directories (default: the configured vaults) and re-runs the " +
			"redundancy sweep on every markdown file written by another actor.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			roots := args
			if len(roots) == 0 {
				roots = cfg.Vaults
			}
			if len(roots) == 0 {
				return fmt.Errorf("no paths given and no vaults configured (agilemd config set vaults ...)")
			}

			svc := newService()
			w, err := watch.New(roots, cfg.Include, func(path string) {
				snap, err := buffer.OpenSnapshot(path)
				if err != nil {
					ui.Logger.Debug("watch open failed", "path", path, "err", err)
					return
				}
				edits, err := svc.Sweep(path, snap)
				if err != nil {
					ui.Logger.Debug("sweep failed", "path", path, "err", err)
					return
				}
				if edits.Empty() {
					return
				}
				if err := snap.Flush(); err != nil {
					ui.Logger.Error("write failed", "path", path, "err", err)
					return
				}
				ui.Logger.Info("swept", "path", path, "removed", len(edits.Remove))
			})
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			ui.Info(fmt.Sprintf("watching %s", strings.Join(roots, ", ")))
			if err := w.Run(ctx); err != nil && err != context.Canceled {
				return err
			}
			return nil
		},
	}
}

func initCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize AGILEMD_HOME with a default config",
		RunE: func(cmd *cobra.Command, args []string) error {
			home := team.Home()
			if err := team.Init(home, force); err != nil {
				return err
			}
			ui.Success(fmt.Sprintf("initialized %s", home))
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Reinitialize even if config exists")
	return cmd
}

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change configuration",
	}
	cmd.AddCommand(configShowCmd())
	cmd.AddCommand(configSetCmd())
	return cmd
}

func configShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := team.Load(team.Home())
			if err != nil {
				return err
			}
			data, err := yaml.Marshal(cfg)
			if err != nil {
				return err
			}
			fmt.Print(string(data))
			return nil
		},
	}
}

func configSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long:  "Keys: team, strict_delegates, vaults (comma separated), include (comma separated).",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			home := team.Home()
			cfg, err := team.Load(home)
			if err != nil {
				return err
			}
			key, value := args[0], args[1]
			switch key {
			case "team":
				cfg.Team = value
			case "strict_delegates":
				b, err := strconv.ParseBool(value)
				if err != nil {
					return fmt.Errorf("strict_delegates wants true/false: %w", err)
				}
				cfg.StrictDelegates = b
			case "vaults":
				cfg.Vaults = splitList(value)
			case "include":
				cfg.Include = splitList(value)
			default:
				return fmt.Errorf("unknown key %q", key)
			}
			if err := team.Save(home, *cfg); err != nil {
				return err
			}
			ui.Success(fmt.Sprintf("%s = %s", key, value))
			return nil
		},
	}
}

func splitList(value string) []string {
	var out []string
	for _, v := range strings.Split(value, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func memberCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "member",
		Short: "Manage the team roster",
	}
	cmd.AddCommand(memberAddCmd())
	cmd.AddCommand(memberListCmd())
	return cmd
}

func memberAddCmd() *cobra.Command {
	var name, kind string

	cmd := &cobra.Command{
		Use:   "add <alias>",
		Short: "Add or update a roster member",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			home := team.Home()
			cfg, err := team.Load(home)
			if err != nil {
				return err
			}
			alias := args[0]
			m := team.Member{Alias: alias, DisplayName: name, Kind: team.MemberKind(kind)}
			replaced := false
			for i := range cfg.Members {
				if cfg.Members[i].Alias == alias {
					cfg.Members[i] = m
					replaced = true
				}
			}
			if !replaced {
				cfg.Members = append(cfg.Members, m)
			}
			if err := team.Save(home, *cfg); err != nil {
				return err
			}
			ui.Success(fmt.Sprintf("member %s (%s)", alias, kind))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name rendered inside marks")
	cmd.Flags().StringVar(&kind, "kind", string(team.KindInternal), "internal, external, or team")
	return cmd
}

func memberListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List roster members",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := team.Load(team.Home())
			if err != nil {
				return err
			}
			if len(cfg.Members) == 0 {
				ui.EmptyState("no members configured")
				return nil
			}
			rows := make([][]string, 0, len(cfg.Members))
			for _, m := range cfg.Members {
				rows = append(rows, []string{m.Alias, m.DisplayName, string(m.Kind)})
			}
			ui.Table([]string{"ALIAS", "NAME", "KIND"}, rows)
			return nil
		},
	}
}

func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check the installation for problems",
		RunE: func(cmd *cobra.Command, args []string) error {
			issues := team.Doctor(team.Home())
			if len(issues) == 0 {
				ui.Success("no problems found")
				return nil
			}
			failed := false
			for _, i := range issues {
				if i.Severity == "error" {
					failed = true
					ui.Error(i.Message)
				} else {
					ui.Warning(i.Message)
				}
			}
			if failed {
				return fmt.Errorf("doctor found errors")
			}
			return nil
		},
	}
}

func mcpServeCmd() *cobra.Command {
	mcpCmd := &cobra.Command{
		Use:   "mcp",
		Short: "Model Context Protocol server",
	}
	mcpCmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Serve agilemd tools over MCP on stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			srv := agilemcp.NewServer(newService(), buildVersion())
			return srv.Run(cmd.Context())
		},
	})
	return mcpCmd
}
