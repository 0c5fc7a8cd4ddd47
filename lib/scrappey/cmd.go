package scrappey

// Cmd is the discriminator carried by every command in its `cmd` field.
type Cmd string

const (
	CmdRequestGet    Cmd = "request.get"
	CmdRequestPost   Cmd = "request.post"
	CmdRequestPut    Cmd = "request.put"
	CmdRequestDelete Cmd = "request.delete"
	CmdRequestPatch  Cmd = "request.patch"

	CmdSessionsCreate  Cmd = "sessions.create"
	CmdSessionsDestroy Cmd = "sessions.destroy"
	CmdSessionsList    Cmd = "sessions.list"
	CmdSessionsActive  Cmd = "sessions.active"

	CmdWebsocketCreate Cmd = "websocket.create"
)

// names of the fields a command sets from named parameters rather than options
const (
	fieldCmd      = "cmd"
	fieldUrl      = "url"
	fieldPostData = "postData"
	fieldSession  = "session"
	fieldUserId   = "userId"
)

var requiredFields = map[Cmd][]string{
	CmdRequestGet:      {fieldUrl},
	CmdRequestPost:     {fieldUrl, fieldPostData},
	CmdRequestPut:      {fieldUrl, fieldPostData},
	CmdRequestDelete:   {fieldUrl},
	CmdRequestPatch:    {fieldUrl, fieldPostData},
	CmdSessionsCreate:  {},
	CmdSessionsDestroy: {fieldSession},
	CmdSessionsList:    {fieldUserId},
	CmdSessionsActive:  {fieldSession},
	CmdWebsocketCreate: {fieldUserId},
}

// Cmds lists every command the remote service accepts.
func Cmds() []Cmd {
	return []Cmd{
		CmdRequestGet,
		CmdRequestPost,
		CmdRequestPut,
		CmdRequestDelete,
		CmdRequestPatch,
		CmdSessionsCreate,
		CmdSessionsDestroy,
		CmdSessionsList,
		CmdSessionsActive,
		CmdWebsocketCreate,
	}
}

func (c Cmd) Valid() bool {
	_, ok := requiredFields[c]
	return ok
}

// RequiredFields returns the wire fields that are always present on a command
// of this kind, not counting `cmd` itself.
func (c Cmd) RequiredFields() []string {
	fields, ok := requiredFields[c]
	if !ok {
		return nil
	}
	out := make([]string, len(fields))
	copy(out, fields)
	return out
}

func (c Cmd) requires(field string) bool {
	for _, f := range requiredFields[c] {
		if f == field {
			return true
		}
	}
	return false
}
