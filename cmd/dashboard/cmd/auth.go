package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"semaphore/dashboard/internal/auth"
	"semaphore/dashboard/internal/services"
	"semaphore/dashboard/internal/session"
)

var readPasswordFunc = term.ReadPassword // mockable

var errEmptyPassword = errors.New("password must not be empty")

func promptPassword(cmd *cobra.Command, label string) (string, error) {
	fmt.Fprint(cmd.ErrOrStderr(), label+": ")
	pwd, err := readPasswordFunc(int(os.Stdin.Fd()))
	fmt.Fprintln(cmd.ErrOrStderr())
	if err != nil {
		return "", err
	}
	if len(pwd) == 0 {
		return "", errEmptyPassword
	}
	return string(pwd), nil
}

var (
	loginEmail string

	registerReq services.RegisterRequest

	resetEmail string
	resetToken string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and store the session",
	Long: `Sign in with an email address. The password is prompted for.

On success the user profile, access token and refresh token are saved in the
configured session store.`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and store the session",
	Args:  cobra.NoArgs,
	RunE:  runRegister,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Clear the stored session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()
		if _, err := unwrap(a.Services.Auth.Logout(cmd.Context())); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user and token expiry",
	Args:  cobra.NoArgs,
	RunE:  runWhoami,
}

var passwordCmd = &cobra.Command{
	Use:   "password",
	Short: "Change or reset a password",
}

var passwordChangeCmd = &cobra.Command{
	Use:   "change",
	Short: "Change the signed-in user's password",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		current, err := promptPassword(cmd, "Current password")
		if err != nil {
			return err
		}
		next, err := promptPassword(cmd, "New password")
		if err != nil {
			return err
		}
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()
		req := services.ChangePasswordRequest{CurrentPassword: current, NewPassword: next}
		if _, err := unwrap(a.Services.Auth.ChangePassword(cmd.Context(), req)); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Password changed")
		return nil
	},
}

var passwordRequestCmd = &cobra.Command{
	Use:   "request-reset",
	Short: "Send a password reset token to an email address",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()
		req := services.GenerateResetTokenRequest{Email: resetEmail}
		if _, err := unwrap(a.Services.Auth.GenerateResetToken(cmd.Context(), req)); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Reset token sent to %s\n", resetEmail)
		return nil
	},
}

var passwordResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Set a new password with a reset token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		next, err := promptPassword(cmd, "New password")
		if err != nil {
			return err
		}
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()
		req := services.ResetPasswordRequest{Email: resetEmail, Token: resetToken, NewPassword: next}
		if _, err := unwrap(a.Services.Auth.ResetPassword(cmd.Context(), req)); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Password reset")
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "account email")
	_ = loginCmd.MarkFlagRequired("email")

	registerCmd.Flags().StringVar(&registerReq.FirstName, "first-name", "", "first name")
	registerCmd.Flags().StringVar(&registerReq.LastName, "last-name", "", "last name")
	registerCmd.Flags().StringVar(&registerReq.Username, "username", "", "username")
	registerCmd.Flags().StringVar(&registerReq.Email, "email", "", "account email")
	registerCmd.Flags().StringVar(&registerReq.PhoneNumber, "phone", "", "phone number")
	registerCmd.Flags().StringVar(&registerReq.ProfileImageURL, "profile-image", "", "profile image URL")

	passwordRequestCmd.Flags().StringVar(&resetEmail, "email", "", "account email")
	passwordResetCmd.Flags().StringVar(&resetEmail, "email", "", "account email")
	passwordResetCmd.Flags().StringVar(&resetToken, "token", "", "reset token from the email")
	passwordCmd.AddCommand(passwordChangeCmd, passwordRequestCmd, passwordResetCmd)

	rootCmd.AddCommand(loginCmd, registerCmd, logoutCmd, whoamiCmd, passwordCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	pwd, err := promptPassword(cmd, "Password")
	if err != nil {
		return err
	}
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	sess, err := unwrap(a.Services.Auth.Login(cmd.Context(), services.LoginRequest{Email: loginEmail, Password: pwd}))
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", sess.User.DisplayName())
	return nil
}

func runRegister(cmd *cobra.Command, args []string) error {
	pwd, err := promptPassword(cmd, "Password")
	if err != nil {
		return err
	}
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	req := registerReq
	req.Password = pwd
	sess, err := unwrap(a.Services.Auth.Register(cmd.Context(), req))
	if err != nil {
		return err
	}
	if sess.Tokens.Empty() {
		fmt.Fprintln(cmd.OutOrStdout(), "Account created, sign in to continue")
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Registered and logged in as %s\n", sess.User.DisplayName())
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	user, err := unwrap(a.Services.Auth.Profile(cmd.Context()))
	if err != nil {
		return err
	}
	tokens, _ := a.Store.Read(cmd.Context())

	info := whoami{User: user, Refreshable: tokens.RefreshToken != ""}
	if claims, err := auth.ParseUnverified(tokens.AccessToken); err == nil {
		info.Role = claims.Role
		if left, ok := claims.ExpiresIn(time.Now()); ok {
			info.ExpiresIn = left.Round(time.Second).String()
			info.Expired = left <= 0
		}
	} else {
		a.logger.Debug("access token claims unreadable", "error", err)
	}
	if info.Role == "" {
		info.Role = user.Role
	}

	return render(cmd.OutOrStdout(), info, []string{"NAME", "EMAIL", "ROLE", "EXPIRES IN", "REFRESHABLE"}, [][]string{{
		user.DisplayName(), user.Email, info.Role, orDash(info.ExpiresIn), fmt.Sprint(info.Refreshable),
	}})
}

type whoami struct {
	User        session.User `json:"user"`
	Role        string       `json:"role,omitempty"`
	ExpiresIn   string       `json:"expiresIn,omitempty"`
	Expired     bool         `json:"expired"`
	Refreshable bool         `json:"refreshable"`
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
