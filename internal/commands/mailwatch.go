package commands

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/oquants/tradewatch/internal/config"
	"github.com/oquants/tradewatch/internal/mail"
	"github.com/oquants/tradewatch/internal/poll"
	"github.com/oquants/tradewatch/internal/server"
)

// NewMailwatchCmd creates the mailwatch command: poll the mailbox for the
// expected notification email within the deadline window.
func NewMailwatchCmd() *cobra.Command {
	var (
		configDir  string
		sender     string
		subject    string
		since      string
		attempts   int
		interval   time.Duration
		unreadOnly bool
		archive    string
	)

	cmd := &cobra.Command{
		Use:   "mailwatch",
		Short: "Poll the mailbox for an expected email, then notify once",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadOrDefault(configDir)
			if err != nil {
				return err
			}

			// Flags override config.
			if cmd.Flags().Changed("sender") {
				cfg.Mail.Sender = sender
			}
			if cmd.Flags().Changed("subject") {
				cfg.Mail.Subject = subject
			}
			if cmd.Flags().Changed("attempts") {
				cfg.Mail.MaxAttempts = attempts
			}
			if cmd.Flags().Changed("interval") {
				cfg.Mail.Interval = interval.String()
			}
			if cmd.Flags().Changed("unread-only") {
				cfg.Mail.UnreadOnly = unreadOnly
			}
			if cmd.Flags().Changed("archive") {
				cfg.Mail.ArchivePath = archive
			}

			if cfg.Mail.Host == "" {
				return fmt.Errorf("mail host is required (set mail.host in tradewatch.yaml)")
			}
			if cfg.Mail.Username == "" || cfg.Mail.Password == "" {
				return fmt.Errorf("mail credentials are required (username in config, password via %s)", config.EnvMailPassword)
			}

			if since == "" {
				since = time.Now().Format("2006-01-02")
			}
			sinceDate, err := time.Parse("2006-01-02", since)
			if err != nil {
				return fmt.Errorf("invalid --since: %w", err)
			}

			policy, err := config.MailPolicy(cfg.Mail)
			if err != nil {
				return err
			}

			logger := slog.Default()
			dispatcher, err := buildDispatcher(cfg.Notify, logger)
			if err != nil {
				return err
			}

			var store *mail.Archive
			if cfg.Mail.ArchivePath != "" {
				store, err = mail.OpenArchive(cfg.Mail.ArchivePath)
				if err != nil {
					return err
				}
				defer func() { _ = store.Close() }()
			}

			client := mail.NewIMAPClient(cfg.Mail.Host, cfg.Mail.Port, cfg.Mail.Username, cfg.Mail.Password)
			filter := mail.SearchFilter{
				Mailbox:    cfg.Mail.Mailbox,
				Sender:     cfg.Mail.Sender,
				Subject:    cfg.Mail.Subject,
				Since:      sinceDate,
				UnreadOnly: cfg.Mail.UnreadOnly,
			}
			probe := mail.NewProbe(client, filter, store, logger)

			runner, err := poll.New("mailwatch", policy, probe, dispatcher.NotifierFunc(), poll.WithLogger(logger))
			if err != nil {
				return err
			}

			ctx, cancel := signalContext()
			defer cancel()

			result := runPoll(ctx, cfg.Server, runner, server.NewRunLog())
			printResult(result)
			return resultErr(result)
		},
	}

	cmd.Flags().StringVar(&configDir, "config", ".", "directory containing tradewatch.yaml")
	cmd.Flags().StringVar(&sender, "sender", "", "filter by sender address")
	cmd.Flags().StringVar(&subject, "subject", "", "filter by subject substring")
	cmd.Flags().StringVar(&since, "since", "", "lower bound date YYYY-MM-DD (default today)")
	cmd.Flags().IntVar(&attempts, "attempts", 0, "max mailbox poll attempts")
	cmd.Flags().DurationVar(&interval, "interval", 0, "delay between poll attempts")
	cmd.Flags().BoolVar(&unreadOnly, "unread-only", false, "match unread messages only")
	cmd.Flags().StringVar(&archive, "archive", "", "sqlite path for archiving matched messages")
	return cmd
}
