package commands

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"scrappey-go/cmd/scrappey-cli/globals"
	"scrappey-go/lib/resultstore"
	"scrappey-go/lib/scrappey"
	"time"
)

// send sends a command with the configured client and records the exchange
// when a history store is open. Store failures are logged, they never fail
// the command itself.
func send(ctx context.Context, cmd scrappey.Command) (scrappey.Response, error) {
	value := globals.Get(ctx)
	res, err := value.Client.Send(ctx, cmd)
	if value.Store != nil {
		record(ctx, *value.Store, cmd, res, err)
	}
	return res, err
}

func record(ctx context.Context, store resultstore.Store, cmd scrappey.Command, res scrappey.Response, sendErr error) {
	now := time.Now()

	request, err := json.Marshal(cmd)
	if err != nil {
		slog.Warn("failed to encode command for history", "err", err)
		return
	}
	exchange := resultstore.Exchange{
		Time:     now,
		Cmd:      string(cmd.Cmd),
		Url:      cmd.Url,
		Session:  cmd.Session,
		Request:  request,
		Response: res.Raw,
		Data:     res.Data,
		Error:    res.Error,
	}
	if exchange.Session == "" {
		exchange.Session = res.Session
	}

	var transportErr *scrappey.TransportError
	if errors.As(sendErr, &transportErr) {
		exchange.StatusCode = transportErr.StatusCode
		if transportErr.StatusCode != 0 {
			exchange.Response = historyBody(transportErr.Body)
		}
	}
	if sendErr != nil && exchange.Error == "" {
		exchange.Error = sendErr.Error()
	}

	_, err = store.RecordExchange(ctx, exchange)
	if err != nil {
		slog.Warn("failed to record exchange", "err", err)
	}

	if sendErr != nil || !res.Succeeded() {
		return
	}
	err = nil
	switch cmd.Cmd {
	case scrappey.CmdSessionsCreate:
		if exchange.Session != "" {
			err = store.TrackSession(ctx, exchange.Session, now)
		}
	case scrappey.CmdSessionsDestroy:
		err = store.ForgetSession(ctx, cmd.Session)
	default:
		if cmd.Session != "" {
			err = store.TrackSession(ctx, cmd.Session, now)
		}
	}
	if err != nil {
		slog.Warn("failed to update tracked sessions", "err", err)
	}
}

// historyBody keeps a json body as is and stores anything else, like the html
// page of a failing gateway, as a json string.
func historyBody(body []byte) json.RawMessage {
	if len(body) == 0 || json.Valid(body) {
		return json.RawMessage(body)
	}
	encoded, err := json.Marshal(string(body))
	if err != nil {
		return nil
	}
	return encoded
}
