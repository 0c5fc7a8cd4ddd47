package scrappey

import (
	"encoding/json"
	"fmt"
)

// Command is a single request to the remote service. On the wire it is one
// flat JSON object: the options, then `cmd` and the named fields on top.
//
// A named field is always written when the command kind requires it, even
// when zero, and otherwise only when set.
type Command struct {
	Cmd      Cmd
	Url      string
	PostData any
	Session  string
	UserId   *int64
	Options  Options
}

func Get(url string, opts Options) Command {
	return Command{Cmd: CmdRequestGet, Url: url, Options: opts}
}

func Post(url string, postData any, opts Options) Command {
	return Command{Cmd: CmdRequestPost, Url: url, PostData: postData, Options: opts}
}

func Put(url string, postData any, opts Options) Command {
	return Command{Cmd: CmdRequestPut, Url: url, PostData: postData, Options: opts}
}

func Delete(url string, opts Options) Command {
	return Command{Cmd: CmdRequestDelete, Url: url, Options: opts}
}

func Patch(url string, postData any, opts Options) Command {
	return Command{Cmd: CmdRequestPatch, Url: url, PostData: postData, Options: opts}
}

// CreateSession asks for a new persistent browser context, set Session on the
// result to choose the session id yourself.
func CreateSession(opts Options) Command {
	return Command{Cmd: CmdSessionsCreate, Options: opts}
}

func DestroySession(session string) Command {
	return Command{Cmd: CmdSessionsDestroy, Session: session}
}

func ListSessions(userId int64) Command {
	return Command{Cmd: CmdSessionsList, UserId: &userId}
}

func SessionActive(session string) Command {
	return Command{Cmd: CmdSessionsActive, Session: session}
}

func CreateWebsocket(userId int64, opts Options) Command {
	return Command{Cmd: CmdWebsocketCreate, UserId: &userId, Options: opts}
}

// InSession returns a copy of the command bound to a session handle.
func (c Command) InSession(session string) Command {
	c.Session = session
	return c
}

func (c Command) fields() (map[string]json.RawMessage, error) {
	fields, err := c.Options.fields()
	if err != nil {
		return nil, err
	}

	put := func(name string, value any) error {
		encoded, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("encode %s: %w", name, err)
		}
		fields[name] = encoded
		return nil
	}

	err = put(fieldCmd, c.Cmd)
	if err != nil {
		return nil, err
	}
	if c.Cmd.requires(fieldUrl) || c.Url != "" {
		err = put(fieldUrl, c.Url)
		if err != nil {
			return nil, err
		}
	}
	if c.Cmd.requires(fieldPostData) || c.PostData != nil {
		err = put(fieldPostData, c.PostData)
		if err != nil {
			return nil, err
		}
	}
	if c.Cmd.requires(fieldSession) || c.Session != "" {
		err = put(fieldSession, c.Session)
		if err != nil {
			return nil, err
		}
	}
	if c.Cmd.requires(fieldUserId) || c.UserId != nil {
		err = put(fieldUserId, c.UserId)
		if err != nil {
			return nil, err
		}
	}
	return fields, nil
}

func (c Command) MarshalJSON() ([]byte, error) {
	fields, err := c.fields()
	if err != nil {
		return nil, err
	}
	return json.Marshal(fields)
}

func (c *Command) UnmarshalJSON(data []byte) error {
	var named struct {
		Cmd      Cmd    `json:"cmd"`
		Url      string `json:"url"`
		PostData any    `json:"postData"`
		Session  string `json:"session"`
		UserId   *int64 `json:"userId"`
	}
	err := json.Unmarshal(data, &named)
	if err != nil {
		return err
	}

	var opts Options
	err = json.Unmarshal(data, &opts)
	if err != nil {
		return err
	}
	for _, name := range []string{fieldCmd, fieldUrl, fieldPostData, fieldSession, fieldUserId} {
		delete(opts.Extra, name)
	}
	if len(opts.Extra) == 0 {
		opts.Extra = nil
	}

	*c = Command{
		Cmd:      named.Cmd,
		Url:      named.Url,
		PostData: named.PostData,
		Session:  named.Session,
		UserId:   named.UserId,
		Options:  opts,
	}
	return nil
}
