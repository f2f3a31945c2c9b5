package senders

import (
	"context"
	"errors"
	"fmt"

	"github.com/carlmjohnson/requests"
)

// expoSender pushes through the Expo push service, which fronts both FCM and APNs
// so android and ios endpoints share it.
type expoSender struct {
	base
}

type expoMessage struct {
	To    string `json:"to"`
	Sound string `json:"sound"`
	Title string `json:"title"`
	Body  string `json:"body"`
}

type expoTicket struct {
	Status  string `json:"status"`
	ID      string `json:"id"`
	Message string `json:"message"`
	Details struct {
		Error string `json:"error"`
	} `json:"details"`
}

type expoResponse struct {
	Data   []expoTicket `json:"data"`
	Errors []struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"errors"`
}

func (e *expoSender) Send(ctx context.Context, token, title, body string) (string, error) {
	messages := []expoMessage{{To: token, Sound: "default", Title: title, Body: body}}

	var resp expoResponse
	rb := requests.URL(e.cfg.Expo.PushURL).
		Transport(e.transport).
		Accept("application/json").
		BodyJSON(messages).
		ToJSON(&resp)
	if e.cfg.Expo.AccessToken != "" {
		rb = rb.Bearer(e.cfg.Expo.AccessToken)
	}
	if err := rb.Fetch(ctx); err != nil {
		return "", fmt.Errorf("expo push: %w", err)
	}

	if len(resp.Errors) > 0 {
		return "", fmt.Errorf("expo push rejected: %s: %s", resp.Errors[0].Code, resp.Errors[0].Message)
	}
	if len(resp.Data) == 0 {
		return "", errors.New("expo push returned no ticket")
	}

	ticket := resp.Data[0]
	if ticket.Status != "ok" {
		return "", fmt.Errorf("expo push ticket %s: %s (%s)", ticket.Status, ticket.Message, ticket.Details.Error)
	}
	return ticket.ID, nil
}
