package profile

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/julianstephens/habitpulse/internal/cli"
	"github.com/julianstephens/habitpulse/internal/constants"
)

type ProfileCmd struct {
	Show ProfileShowCmd `cmd:"" help:"Show the profile." default:"1"`
	Set  ProfileSetCmd  `cmd:"" help:"Update the profile."`
}

type ProfileShowCmd struct{}

func (c *ProfileShowCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}
	p, err := ctx.Store.GetProfile()
	if err != nil {
		return fmt.Errorf("failed to read profile: %w", err)
	}

	fmt.Printf("Name:   %s\n", p.Name)
	fmt.Printf("Avatar: %s\n", p.Avatar)
	return nil
}

type ProfileSetCmd struct {
	Name   *string `help:"Display name."`
	Avatar *string `help:"Avatar URL, or the number of a built-in avatar (1-12)."`
}

func (c *ProfileSetCmd) Run(ctx *cli.Context) error {
	if c.Name == nil && c.Avatar == nil {
		return fmt.Errorf("nothing to update: pass --name and/or --avatar")
	}
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	p, err := ctx.Store.GetProfile()
	if err != nil {
		return fmt.Errorf("failed to read profile: %w", err)
	}

	if c.Name != nil {
		name := strings.TrimSpace(*c.Name)
		if name == "" {
			return fmt.Errorf("name cannot be empty")
		}
		p.Name = name
	}
	if c.Avatar != nil {
		avatar, err := resolveAvatar(*c.Avatar)
		if err != nil {
			return err
		}
		p.Avatar = avatar
	}

	if err := ctx.WithLock(func() error { return ctx.Store.SaveProfile(p) }); err != nil {
		return err
	}
	fmt.Printf("Profile updated: %s\n", p.Name)
	return nil
}

func resolveAvatar(value string) (string, error) {
	v := strings.TrimSpace(value)
	if n, err := strconv.Atoi(v); err == nil {
		if n < 1 || n > len(constants.Avatars) {
			return "", fmt.Errorf("avatar number must be between 1 and %d", len(constants.Avatars))
		}
		return constants.Avatars[n-1], nil
	}
	if !strings.HasPrefix(v, "https://") && !strings.HasPrefix(v, "http://") {
		return "", fmt.Errorf("avatar must be a URL or a built-in avatar number")
	}
	return v, nil
}
