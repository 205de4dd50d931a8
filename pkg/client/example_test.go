package client_test

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/welth-app/welth/pkg/client"
)

// Example demonstrates basic usage of the Welth client
func Example() {
	c := client.NewClient(client.Config{
		BaseURL: "http://localhost:8080",
	})

	ctx := context.Background()

	loginResp, err := c.Login(ctx, "ana.lopez", "password")
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Logged in as: %s\n", loginResp.User.Username)

	ent, err := c.Me(ctx)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Tier %s, %d free evaluations left\n", ent.Tier, ent.FreeRemaining)
}

// ExampleChatService_Send demonstrates streaming an assistant reply
func ExampleChatService_Send() {
	c := client.NewClient(client.Config{
		BaseURL: "http://localhost:8080",
	})

	if _, err := c.Login(context.Background(), "ana.lopez", "password"); err != nil {
		log.Fatal(err)
	}

	_, err := c.Chat().Send(context.Background(),
		[]client.Message{client.UserMessage("¿Cómo mejoro mi descanso?")},
		func(delta string) { fmt.Fprint(os.Stdout, delta) },
	)
	if err != nil {
		log.Fatal(err)
	}
}
