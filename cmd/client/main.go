package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"quickchat/internal/client"
	"quickchat/internal/shared/logger"
)

func main() {
	serverURL := flag.String("server", "http://localhost:5000", "backend base URL")
	flag.Parse()

	log := logger.NewLogger()

	session, err := client.NewSession(*serverURL, nil, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize session: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	if err := session.CheckAuth(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "session restore failed: %v\n", err)
	}
	cancel()

	if user := session.User(); user != nil {
		fmt.Printf("Welcome back, %s (%s)\n", user.FullName, user.Email)
	} else {
		fmt.Println("Not logged in. Use: signup <name> <email> <password> or login <email> <password>")
	}

	session.Socket().OnOnlineUsers = func(ids []string) {
		fmt.Printf("online now: %s\n", strings.Join(ids, ", "))
	}

	scanner := bufio.NewScanner(os.Stdin)
	fmt.Print("> ")
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			if quit := run(session, line); quit {
				break
			}
		}
		fmt.Print("> ")
	}

	if err := session.Logout(); err != nil {
		fmt.Fprintf(os.Stderr, "logout failed: %v\n", err)
	}
}

func run(session *client.Session, line string) bool {
	args := strings.Fields(line)
	cmd := args[0]
	args = args[1:]

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	switch cmd {
	case "signup":
		if len(args) < 3 {
			fmt.Println("usage: signup <name> <email> <password> [bio...]")
			return false
		}
		creds := client.Credentials{
			FullName: args[0],
			Email:    args[1],
			Password: args[2],
			Bio:      strings.Join(args[3:], " "),
		}
		user, err := session.Login(ctx, client.ModeSignup, creds)
		if err != nil {
			fmt.Printf("signup failed: %v\n", err)
			return false
		}
		fmt.Printf("account created for %s\n", user.Email)

	case "login":
		if len(args) != 2 {
			fmt.Println("usage: login <email> <password>")
			return false
		}
		user, err := session.Login(ctx, client.ModeLogin, client.Credentials{
			Email:    args[0],
			Password: args[1],
		})
		if err != nil {
			fmt.Printf("login failed: %v\n", err)
			return false
		}
		fmt.Printf("logged in as %s\n", user.FullName)

	case "whoami":
		if user := session.User(); user != nil {
			fmt.Printf("%s <%s> bio=%q\n", user.FullName, user.Email, user.Bio)
		} else {
			fmt.Println("not logged in")
		}

	case "bio":
		if len(args) == 0 {
			fmt.Println("usage: bio <text...>")
			return false
		}
		user, err := session.UpdateProfile(ctx, client.ProfileFields{Bio: strings.Join(args, " ")})
		if err != nil {
			fmt.Printf("update failed: %v\n", err)
			return false
		}
		fmt.Printf("bio updated: %q\n", user.Bio)

	case "online":
		online := session.OnlineUsers()
		if len(online) == 0 {
			fmt.Println("nobody online")
		} else {
			fmt.Println(strings.Join(online, "\n"))
		}

	case "logout":
		if err := session.Logout(); err != nil {
			fmt.Printf("logout failed: %v\n", err)
			return false
		}
		fmt.Println("logged out")

	case "quit", "exit":
		return true

	default:
		fmt.Println("commands: signup, login, whoami, bio, online, logout, quit")
	}

	return false
}
