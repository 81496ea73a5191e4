package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"punch/internal/client/identity"
	"punch/internal/client/session"
	"punch/internal/client/tui"
	"punch/internal/client/waitlist"
)

var errNotSignedIn = errors.New(`you're not signed in yet. run "punch signin <your name>" first`)

func newSignInCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "signin <name>",
		Short: "Tell Punch your name",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			who, err := e.identity.SignIn(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "hey %s! you're signed in as %s\n", who.Name, who.UserID)
			if who.Token == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "(couldn't reach punch right now, your chats will still be saved here)")
			}
			return nil
		},
	}
}

func newSignOutCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "signout",
		Short: "Forget who you are on this machine",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := e.identity.SignOut(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "signed out. later!")
			return nil
		},
	}
}

func newWhoAmICommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in identity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			who, err := e.identity.Current(cmd.Context())
			if errors.Is(err, identity.ErrNoIdentity) {
				return errNotSignedIn
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s), since %s\n",
				who.Name, who.UserID, who.CreatedAt.Local().Format(time.DateTime))
			return nil
		},
	}
}

func newChatCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Open the chat",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd, e)
		},
	}
}

func newClearCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete the saved conversation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, err := startSession(cmd, e)
			if err != nil {
				return err
			}
			ctrl.Clear(cmd.Context())
			fmt.Fprintln(cmd.OutOrStdout(), "conversation cleared")
			return nil
		},
	}
}

func newWaitlistCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "waitlist",
		Short: "Early access waitlist",
	}

	join := &cobra.Command{
		Use:   "join <email>",
		Short: "Join the early access waitlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outcome, err := e.waitlist.Submit(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "You're in! We'll reach out when Punch is ready for you.")
			if note := outcomeNote(outcome); note != "" {
				fmt.Fprintln(cmd.OutOrStdout(), note)
			}
			return nil
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List signups saved on this machine while the site was unreachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := e.store.ListWaitlistEntries(cmd.Context())
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no local signups")
				return nil
			}
			for _, entry := range entries {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", entry.Email, entry.CreatedAt.Local().Format(time.DateTime))
			}
			return nil
		},
	}

	cmd.AddCommand(join, list)
	return cmd
}

func startSession(cmd *cobra.Command, e *env) (*session.Controller, error) {
	ctrl, err := session.Start(cmd.Context(), session.Deps{
		Identity:      e.identity,
		Transcripts:   e.store,
		Chat:          e.chatAPI,
		Logger:        e.logger,
		ReplyDelayMin: time.Duration(e.cfg.ReplyDelayMinMS) * time.Millisecond,
		ReplyDelayMax: time.Duration(e.cfg.ReplyDelayMaxMS) * time.Millisecond,
	})
	if errors.Is(err, session.ErrNoIdentity) {
		return nil, errNotSignedIn
	}
	return ctrl, err
}

func runChat(cmd *cobra.Command, e *env) error {
	ctrl, err := startSession(cmd, e)
	if err != nil {
		return err
	}
	signedOut, err := tui.Run(cmd.Context(), ctrl)
	if err != nil {
		return err
	}
	if signedOut {
		fmt.Fprintln(cmd.OutOrStdout(), "signed out. later!")
	}
	return nil
}

// outcomeNote is printed after a waitlist join that did not reach the site.
func outcomeNote(o waitlist.Outcome) string {
	if o == waitlist.OutcomeSavedLocally {
		return "(the site was unreachable, saved on this machine)"
	}
	return ""
}
