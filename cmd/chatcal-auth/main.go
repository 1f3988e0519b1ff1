package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/chatcal/chatcal-go/internal/calendar"
	"github.com/chatcal/chatcal-go/internal/config"
	"github.com/chatcal/chatcal-go/pkg/logger"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

func main() {
	app := &cli.App{
		Name:  "chatcal-auth",
		Usage: "Run the Google OAuth consent flow and print a refresh token for chatcal-server.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Value: "configs/chatcal.yaml", Usage: "config file path"},
		},
		Commands: []*cli.Command{
			urlCommand(),
			exchangeCommand(),
			loginCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func urlCommand() *cli.Command {
	return &cli.Command{
		Name:  "url",
		Usage: "Print the consent URL.",
		Action: func(c *cli.Context) error {
			oauthCfg, _, err := loadOAuth(c)
			if err != nil {
				return err
			}
			fmt.Println(authURL(oauthCfg))
			return nil
		},
	}
}

func exchangeCommand() *cli.Command {
	return &cli.Command{
		Name:  "exchange",
		Usage: "Exchange an authorization code for a refresh token.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "code", Required: true, Usage: "authorization code from the redirect"},
		},
		Action: func(c *cli.Context) error {
			oauthCfg, log, err := loadOAuth(c)
			if err != nil {
				return err
			}
			return exchange(c.Context, oauthCfg, c.String("code"), log)
		},
	}
}

func loginCommand() *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "Print the consent URL, read the code from stdin and print a refresh token.",
		Action: func(c *cli.Context) error {
			oauthCfg, log, err := loadOAuth(c)
			if err != nil {
				return err
			}

			fmt.Printf("Open the following link in your browser, approve access, then paste the "+
				"\"code\" parameter from the redirect URL:\n%s\n\n", authURL(oauthCfg))
			fmt.Print("Authorization code: ")

			code, err := bufio.NewReader(os.Stdin).ReadString('\n')
			if err != nil && strings.TrimSpace(code) == "" {
				return fmt.Errorf("read authorization code: %w", err)
			}
			return exchange(c.Context, oauthCfg, code, log)
		},
	}
}

func loadOAuth(c *cli.Context) (*oauth2.Config, *zap.Logger, error) {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return nil, nil, err
	}
	log, err := logger.NewLogger(cfg.Log)
	if err != nil {
		return nil, nil, err
	}

	g := cfg.Calendar.Google
	if g.ClientID == "" || g.ClientSecret == "" {
		return nil, nil, errors.New("GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET are required")
	}
	return calendar.OAuthConfig(g), log, nil
}

// ApprovalForce 가 있어야 이미 동의한 계정에서도 리프레시 토큰이 다시 발급된다.
func authURL(cfg *oauth2.Config) string {
	return cfg.AuthCodeURL("chatcal", oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

func exchange(ctx context.Context, cfg *oauth2.Config, code string, log *zap.Logger) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return errors.New("authorization code is empty")
	}

	token, err := cfg.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("unable to exchange authorization code: %w", err)
	}
	if token.RefreshToken == "" {
		return errors.New("no refresh token returned; revoke the app's access and try again")
	}

	log.Info("리프레시 토큰 발급 완료", zap.Time("accessTokenExpiry", token.Expiry))
	fmt.Printf("GOOGLE_REFRESH_TOKEN=%s\n", token.RefreshToken)
	return nil
}
