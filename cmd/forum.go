package cmd

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"mdb/internal/cli"
	"mdb/internal/forum"
	"mdb/pkg/models"

	"github.com/chzyer/readline"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
)

var threadHeaders = []string{"id", "title", "category", "author", "posts", "last activity", "flags"}

var postHeaders = []string{"id", "author", "created", "content"}

// newForumCmd creates the forum command group.
func newForumCmd(flags *cli.CommandFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "forum",
		Short: "Browse and post to the forum",
		Long: `Browse and post to the MDB community forum.

Listing and reading threads works without logging in. Creating threads and
posts requires 'mdb auth login'.

Examples:
  mdb forum threads --category general       # List threads in a category
  mdb forum thread 42                        # Show a thread
  mdb forum posts 42 --page 1                # List replies
  mdb forum create-thread --title "Hello"    # Start a thread
  mdb forum post 42 --content "Thanks!"      # Reply to a thread`,
	}

	cmd.AddCommand(newForumThreadsCmd(flags))
	cmd.AddCommand(newForumThreadCmd(flags))
	cmd.AddCommand(newForumPostsCmd(flags))
	cmd.AddCommand(newForumCreateThreadCmd(flags))
	cmd.AddCommand(newForumPostCmd(flags))
	return cmd
}

func newForumThreadsCmd(flags *cli.CommandFlags) *cobra.Command {
	var q forum.ThreadQuery

	cmd := &cobra.Command{
		Use:     "threads",
		Aliases: []string{"ls"},
		Short:   "List forum threads",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := loadRuntime(flags)
			if err != nil {
				return err
			}

			progress := cli.StartProgress(cmd.ErrOrStderr(), "Loading threads...", flags.Quiet || flags.OutputFormat != cli.OutputTable)
			page, err := rt.Forum.GetThreads(cmd.Context(), q)
			progress.Stop()
			if err != nil {
				return cli.WrapAuthError(rt.Config.BackendURL, err)
			}

			rows := make([][]string, 0, len(page.Content))
			for _, t := range page.Content {
				rows = append(rows, threadRow(t))
			}

			printer := cli.NewPrinter(cmd.OutOrStdout(), *flags)
			if err := printer.Table(threadHeaders, rows, page); err != nil {
				return err
			}
			if !printer.Structured() && !flags.Quiet && len(rows) > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "Page %d of %d (%d threads)\n", page.Number+1, max(page.TotalPages, 1), page.TotalElements)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&q.Page, "page", 0, "Page number, starting at 0")
	cmd.Flags().IntVar(&q.Size, "size", forum.DefaultPageSize, fmt.Sprintf("Page size (1-%d)", forum.MaxPageSize))
	cmd.Flags().StringVar(&q.Category, "category", "", "Only list threads in this category")
	return cmd
}

func newForumThreadCmd(flags *cli.CommandFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "thread <id>",
		Short: "Show a thread and its posts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseThreadID(args[0])
			if err != nil {
				return err
			}
			rt, err := loadRuntime(flags)
			if err != nil {
				return err
			}

			progress := cli.StartProgress(cmd.ErrOrStderr(), "Loading thread...", flags.Quiet || flags.OutputFormat != cli.OutputTable)
			thread, err := rt.Forum.GetThread(cmd.Context(), id)
			progress.Stop()
			if err != nil {
				return cli.WrapAuthError(rt.Config.BackendURL, err)
			}

			printer := cli.NewPrinter(cmd.OutOrStdout(), *flags)
			if printer.Structured() {
				return printer.Object(thread)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s\n", text.Bold.Sprintf("#%d", thread.ID), text.Bold.Sprint(thread.Title))
			writeField(out, "Author", authorName(thread.Author))
			if thread.Category != "" {
				writeField(out, "Category", thread.Category)
			}
			writeField(out, "Created", thread.CreatedAt)
			if f := threadFlags(*thread); f != "" {
				writeField(out, "Flags", f)
			}
			if thread.Content != "" {
				fmt.Fprintf(out, "\n%s\n", thread.Content)
			}
			if len(thread.Posts) > 0 {
				fmt.Fprintln(out)
				return printer.Table(postHeaders, postRows(thread.Posts), thread.Posts)
			}
			return nil
		},
	}
}

func newForumPostsCmd(flags *cli.CommandFlags) *cobra.Command {
	var page, size int

	cmd := &cobra.Command{
		Use:   "posts <id>",
		Short: "List the posts of a thread",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseThreadID(args[0])
			if err != nil {
				return err
			}
			rt, err := loadRuntime(flags)
			if err != nil {
				return err
			}

			progress := cli.StartProgress(cmd.ErrOrStderr(), "Loading posts...", flags.Quiet || flags.OutputFormat != cli.OutputTable)
			posts, err := rt.Forum.GetThreadPosts(cmd.Context(), id, page, size)
			progress.Stop()
			if err != nil {
				return cli.WrapAuthError(rt.Config.BackendURL, err)
			}

			printer := cli.NewPrinter(cmd.OutOrStdout(), *flags)
			return printer.Table(postHeaders, postRows(posts.Content), posts)
		},
	}

	cmd.Flags().IntVar(&page, "page", 0, "Page number, starting at 0")
	cmd.Flags().IntVar(&size, "size", forum.DefaultPageSize, fmt.Sprintf("Page size (1-%d)", forum.MaxPageSize))
	return cmd
}

func newForumCreateThreadCmd(flags *cli.CommandFlags) *cobra.Command {
	var req models.CreateThreadRequest

	cmd := &cobra.Command{
		Use:   "create-thread",
		Short: "Start a new thread",
		Long: `Start a new thread. Requires a login.

Without --content an interactive terminal prompts for the body; use
--content - to read it from standard input.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := resolveContent(cmd, "Thread content")
			if err != nil {
				return err
			}
			req.Content = content

			rt, err := loadRuntime(flags)
			if err != nil {
				return err
			}

			thread, err := rt.Forum.CreateThread(cmd.Context(), req)
			if err != nil {
				return cli.WrapAuthError(rt.Config.BackendURL, err)
			}

			printer := cli.NewPrinter(cmd.OutOrStdout(), *flags)
			if printer.Structured() {
				return printer.Object(thread)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Created thread #%d: %s\n", text.FgGreen.Sprint("✓"), thread.ID, thread.Title)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Title, "title", "", "Thread title")
	cmd.Flags().StringVar(&req.Content, "content", "", "Thread body, or - to read standard input")
	return cmd
}

func newForumPostCmd(flags *cli.CommandFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "post <id>",
		Short: "Reply to a thread",
		Long: `Reply to a thread. Requires a login.

Without --content an interactive terminal prompts for the reply; use
--content - to read it from standard input.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseThreadID(args[0])
			if err != nil {
				return err
			}
			content, err := resolveContent(cmd, "Reply")
			if err != nil {
				return err
			}

			rt, err := loadRuntime(flags)
			if err != nil {
				return err
			}

			post, err := rt.Forum.CreatePost(cmd.Context(), id, models.CreatePostRequest{Content: content})
			if err != nil {
				return cli.WrapAuthError(rt.Config.BackendURL, err)
			}

			printer := cli.NewPrinter(cmd.OutOrStdout(), *flags)
			if printer.Structured() {
				return printer.Object(post)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Posted reply #%d to thread #%d\n", text.FgGreen.Sprint("✓"), post.ID, id)
			return nil
		},
	}

	cmd.Flags().String("content", "", "Reply text, or - to read standard input")
	return cmd
}

// resolveContent returns the --content value. "-" reads standard input; an
// unset flag prompts when attached to a terminal.
func resolveContent(cmd *cobra.Command, label string) (string, error) {
	content, _ := cmd.Flags().GetString("content")

	if content == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("failed to read content from stdin: %w", err)
		}
		return strings.TrimSpace(string(data)), nil
	}

	if cmd.Flags().Changed("content") || cmd.InOrStdin() != os.Stdin || !readline.DefaultIsTerminal() {
		return content, nil
	}
	return cli.ReadContent(label, os.Stdin, cmd.ErrOrStderr())
}

// parseThreadID parses a positional thread id. Range checks are left to
// the forum service.
func parseThreadID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid thread id %q: must be a number", arg)
	}
	return id, nil
}

func threadRow(t models.ForumThread) []string {
	activity := t.LastActivity
	if activity == "" {
		activity = t.CreatedAt
	}
	return []string{
		strconv.FormatInt(t.ID, 10),
		t.Title,
		t.Category,
		authorName(t.Author),
		strconv.Itoa(t.PostCount),
		activity,
		threadFlags(t),
	}
}

func postRows(posts []models.ForumPost) [][]string {
	rows := make([][]string, 0, len(posts))
	for _, p := range posts {
		rows = append(rows, []string{
			strconv.FormatInt(p.ID, 10),
			authorName(p.Author),
			p.CreatedAt,
			p.Content,
		})
	}
	return rows
}

func threadFlags(t models.ForumThread) string {
	var f []string
	if t.Pinned {
		f = append(f, "pinned")
	}
	if t.Locked {
		f = append(f, "locked")
	}
	return strings.Join(f, ",")
}

func authorName(u *models.User) string {
	if u == nil || u.Username == "" {
		return "-"
	}
	return u.Username
}
