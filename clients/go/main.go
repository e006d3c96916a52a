// Teamline CLI - Command line client for Teamline
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/teamline-app/teamline/clients/go/teamline"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	baseURL := os.Getenv("TEAMLINE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	client := teamline.NewClient(baseURL)
	cmd := os.Args[1]

	switch cmd {
	case "health":
		resp, err := client.Health()
		exitOnError(err)
		printJSON(resp)

	case "signup":
		if len(os.Args) < 5 {
			fmt.Fprintln(os.Stderr, "Usage: teamline signup <username> <email> <password>")
			os.Exit(1)
		}
		resp, err := client.Signup(os.Args[2], os.Args[3], os.Args[4])
		exitOnError(err)
		fmt.Printf("Registered as: %s\n", resp.ID)

	case "login":
		if len(os.Args) < 4 {
			fmt.Fprintln(os.Stderr, "Usage: teamline login <username> <password>")
			os.Exit(1)
		}
		resp, err := client.Login(os.Args[2], os.Args[3])
		exitOnError(err)
		fmt.Printf("Logged in as: %s\n", resp.UserID)

	case "chats":
		resp, err := client.ListChats()
		exitOnError(err)
		for _, ch := range resp.Chats {
			name := ch.GroupName
			if name == "" {
				name = fmt.Sprintf("%d members", len(ch.Participants))
			}
			fmt.Printf("  %s  %s\n", ch.ID, name)
		}

	case "new":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "Usage: teamline new <user_id> [user_id...]")
			os.Exit(1)
		}
		chat, err := client.CreateChat(os.Args[2:], "")
		exitOnError(err)
		fmt.Printf("Created chat: %s\n", chat.ID)

	case "read":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "Usage: teamline read <chat_id>")
			os.Exit(1)
		}
		resp, err := client.GetMessages(os.Args[2])
		exitOnError(err)
		for _, msg := range resp.Messages {
			ts := msg.CreatedAt.Format("2006-01-02 15:04:05")
			from := msg.SenderID
			if len(from) > 8 {
				from = from[:8]
			}
			fmt.Printf("[%s] %s: %s\n", ts, from, msg.Content)
		}

	case "post":
		if len(os.Args) < 4 {
			fmt.Fprintln(os.Stderr, "Usage: teamline post <chat_id> <message>")
			os.Exit(1)
		}
		msg, err := client.SendMessage(os.Args[2], os.Args[3])
		exitOnError(err)
		fmt.Printf("Posted: %s\n", msg.ID)

	case "listen":
		sock, err := client.Connect()
		exitOnError(err)
		defer sock.Close()
		fmt.Fprintln(os.Stderr, "Listening for pushes (Ctrl-C to stop)")
		for {
			push, err := sock.Next()
			exitOnError(err)
			ts := time.Now().Format("15:04:05")
			if push.IsSignal() {
				fmt.Printf("[%s] signal %s: %s\n", ts, push.SignalType, push.Raw)
			} else {
				fmt.Printf("[%s] %s @ %s: %s\n", ts, push.SenderID, push.ChatID, push.Content)
			}
		}

	case "help", "--help", "-h":
		usage()

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Println(`Teamline CLI - Team chat client

Usage: teamline <command> [options]

Commands:
  signup <user> <email> <pw>  Register a new account
  login <user> <pw>           Log in and save the session
  chats                       List your chats
  new <user_id>...            Create a chat with the given users
  post <chat_id> <message>    Post a message to a chat
  read <chat_id>              Read a chat's history
  listen                      Stream live pushes over the socket
  health                      Check server health

Environment:
  TEAMLINE_URL      Server URL (default: http://localhost:8080)
  TEAMLINE_CONFIG   Config directory (default: ~/.teamline)`)
}

func exitOnError(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func printJSON(v interface{}) {
	data, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(data))
}
