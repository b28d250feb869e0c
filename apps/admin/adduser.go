package main

import (
	"context"
	"time"

	"github.com/shulehub/shule/core"
	"github.com/shulehub/shule/core/user"
)

// addUser creates an admin account.
func (cli *commandLine) addUser(name, email, pwd string) error {
	ctx := context.Background()
	usr := user.User{
		Name:      core.CleanString(name),
		Email:     core.CleanString(email, true /* lower */),
		Role:      user.RoleAdmin,
		CreatedAt: time.Now().UTC(),
	}

	if err := cli.usrRepo.CheckEmailUniqueness(ctx, usr.Email); err != nil {
		return err
	}
	if err := usr.SetPassword(pwd, cli.conf.BcryptCost); err != nil {
		return err
	}
	_, err := cli.usrRepo.CreateUser(ctx, usr)
	return err
}
