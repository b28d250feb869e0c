package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"sort"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/shulehub/shule/client"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	api     *client.Client
	session *client.SessionStore
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  register -name NAME -email EMAIL [-role ROLE] [-course COURSE] [-subject SUBJECT] - create an account")
	fmt.Println("  login -email EMAIL   - log in; the password will be prompted")
	fmt.Println("  logout               - drop the saved session")
	fmt.Println("  whoami               - show the current session")
	fmt.Println("  dashboard            - open your role's dashboard")
	fmt.Println("  users                - list all accounts (admin)")
	fmt.Println("  users delete ID      - delete an account (admin)")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	registerCmd := flag.NewFlagSet("register", flag.ExitOnError)
	registerName := registerCmd.String("name", "", "Your full name.")
	registerEmail := registerCmd.String("email", "", "Your email address. The password will be prompted next.")
	registerRole := registerCmd.String("role", "", "Account role: Admin, Teacher or Student. Defaults to Student.")
	registerCourse := registerCmd.String("course", "", "Enrolled course (students).")
	registerSubject := registerCmd.String("subject", "", "Taught subject (teachers).")

	loginCmd := flag.NewFlagSet("login", flag.ExitOnError)
	loginEmail := loginCmd.String("email", "", "Your email address. The password will be prompted next.")

	switch args[1] {
	case "register":
		if err := registerCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *registerName == "" || *registerEmail == "" {
			registerCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			registerCmd.Usage()
			return errHelp
		}
		return cli.register(ctx, client.RegisterInput{
			Name:     *registerName,
			Email:    *registerEmail,
			Password: pwd,
			Role:     *registerRole,
			Course:   *registerCourse,
			Subject:  *registerSubject,
		})
	case "login":
		if err := loginCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *loginEmail == "" {
			loginCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			loginCmd.Usage()
			return errHelp
		}
		return cli.login(ctx, *loginEmail, pwd)
	case "logout":
		cli.api.Logout()
		fmt.Println("Logged out.")
		return nil
	case "whoami":
		return cli.whoami()
	case "dashboard":
		return cli.dashboard(ctx)
	case "users":
		if len(args) > 2 && args[2] == "delete" {
			if len(args) < 4 {
				cli.printUsage()
				return errHelp
			}
			return cli.deleteUser(ctx, args[3])
		}
		return cli.listUsers(ctx)
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) promptPassword() (string, error) {
	fmt.Print("Enter password:")
	pwd, err := readPasswordFunc(syscall.Stdin)
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(pwd), nil
}

func (cli *commandLine) register(ctx context.Context, input client.RegisterInput) error {
	if err := cli.api.Register(ctx, input); err != nil {
		return err
	}
	fmt.Println("Account created. You can now log in.")
	return nil
}

func (cli *commandLine) login(ctx context.Context, email, pwd string) error {
	resp, err := cli.api.Login(ctx, email, pwd)
	if err != nil {
		return err
	}
	fmt.Printf("Welcome %s (%s).\n", resp.User.Name, resp.User.Role)
	fmt.Printf("Your dashboard: %s\n", client.DashboardPath(resp.User.Role))
	return nil
}

func (cli *commandLine) whoami() error {
	snap := cli.session.Snapshot()
	if snap.State != client.StateAuthenticated {
		fmt.Println("Not logged in.")
		return nil
	}
	fmt.Printf("%s <%s> - %s\n", snap.User.Name, snap.User.Email, snap.User.Role)
	return nil
}

func (cli *commandLine) dashboard(ctx context.Context) error {
	snap := cli.session.Snapshot()
	path := client.DashboardPath(snap.User.Role)
	route := client.ResolveRoute(path)

	switch client.Decide(snap, route.RequiredRole) {
	case client.RedirectToLogin:
		fmt.Println("Not logged in; use `portal login` first.")
		return nil
	case client.RedirectToUnauthorized:
		fmt.Printf("You are not allowed on %s.\n", route.Path)
		return nil
	}

	payload, err := cli.api.Dashboard(ctx, snap.User.Role)
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(payload))
	for k := range payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	fmt.Printf("%s dashboard:\n", snap.User.Role)
	for _, k := range keys {
		if k == "success" {
			continue
		}
		fmt.Printf("  %s: %v\n", k, payload[k])
	}
	return nil
}

func (cli *commandLine) listUsers(ctx context.Context) error {
	users, err := cli.api.Users(ctx)
	if err != nil {
		return err
	}
	for _, usr := range users {
		fmt.Printf("%s  %s <%s>  %s\n", usr.ID, usr.Name, usr.Email, usr.Role)
	}
	return nil
}

func (cli *commandLine) deleteUser(ctx context.Context, id string) error {
	if err := cli.api.DeleteUser(ctx, id); err != nil {
		return err
	}
	fmt.Println("Account deleted.")
	return nil
}
