// Command chat-console is a standalone console viewer for a pump.fun chat
// room, talking to the chat client directly without any MCP layer. Lines
// typed on stdin are sent to the room.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"

	"github.com/jessevdk/go-flags"

	"github.com/CodingButter/pump-fun-chat-mcp/chat"
)

type options struct {
	Room     string `short:"r" long:"room" env:"PUMP_FUN_ROOM" description:"pump.fun room identity (token address)" required:"true"`
	Username string `long:"username" default:"console" description:"display identity"`
	Server   string `long:"server" env:"PUMP_FUN_CHAT_URL" description:"livechat endpoint override"`
}

func main() {
	opts := &options{}
	if _, err := flags.ParseArgs(opts, os.Args[1:]); err != nil {
		os.Exit(1)
	}
	client, err := chat.New(chat.Options{
		RoomID:    opts.Room,
		Username:  opts.Username,
		ServerURL: opts.Server,
	})
	if err != nil {
		log.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := client.Connect(ctx); err != nil {
		log.Fatal(err)
	}

	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			line := scanner.Text()
			if line == "" {
				continue
			}
			if err := client.Send(line); err != nil {
				log.Printf("send failed: %v", err)
			}
		}
		client.Disconnect()
	}()

	for ev := range client.Events() {
		switch ev.Type {
		case chat.EventConnected:
			fmt.Printf("* connected to room %s\n", opts.Room)
		case chat.EventMessageHistory:
			for _, m := range ev.History {
				fmt.Printf("[%s] %s: %s\n", m.Timestamp, m.Username, m.Message)
			}
		case chat.EventMessage:
			fmt.Printf("[%s] %s: %s\n", ev.Message.Timestamp, ev.Message.Username, ev.Message.Message)
		case chat.EventServerError:
			fmt.Printf("* server error: %s\n", ev.ServerError.Error)
		case chat.EventError:
			fmt.Printf("* error: %v\n", ev.Err)
		case chat.EventDisconnected:
			fmt.Println("* disconnected")
		case chat.EventMaxReconnectAttemptsReached:
			fmt.Println("* gave up reconnecting")
			os.Exit(1)
		}
	}
}
