package dispatch

import (
	"fmt"
	"strings"

	"github.com/stool-cli/stool/internal/util"
)

// ScriptFD is the descriptor the automation script is read from in the
// expect child. It is the first of exec.Cmd.ExtraFiles.
const ScriptFD = 3

// Finish selects what the script does once the password has been sent.
type Finish int

const (
	// FinishInteract hands the session to the user.
	FinishInteract Finish = iota
	// FinishEOF waits for the spawned program to finish on its own.
	FinishEOF
)

// ExpectArgs is the argv for expect reading its script from ScriptFD.
func ExpectArgs() []string {
	return []string{"-f", fmt.Sprintf("/dev/fd/%d", ScriptFD)}
}

// ExpectScript renders the automation script for spawn. The script confirms
// an unknown host key, sends password at the password prompt, then either
// interacts or waits for eof, and exits with the spawned program's status.
//
// The result holds the password in clear text; callers must zero it.
func ExpectScript(spawn []string, password []byte, finish Finish) []byte {
	var head strings.Builder
	fmt.Fprintf(&head, "set timeout %d\nspawn", util.ExpectTimeoutSeconds)
	for _, a := range spawn {
		head.WriteString(" ")
		head.WriteString(tclQuote(a))
	}
	head.WriteString("\n")
	head.WriteString("expect {\n")
	head.WriteString("    -nocase \"yes/no\" { send \"yes\\r\"; exp_continue }\n")
	// "--" keeps a password that starts with "-" from being read as a send flag.
	head.WriteString("    -nocase \"password:\" { send -- \"")

	tail := "\\r\" }\n    eof { catch wait result; exit [lindex $result 3] }\n}\n"
	if finish == FinishInteract {
		tail += "interact\n"
	} else {
		tail += "set timeout -1\nexpect eof\n"
	}
	tail += "catch wait result\nexit [lindex $result 3]\n"

	// Sized up front so the password is never copied into a discarded buffer.
	buf := make([]byte, 0, head.Len()+2*len(password)+len(tail))
	buf = append(buf, head.String()...)
	buf = appendTclEscaped(buf, password)
	buf = append(buf, tail...)
	return buf
}

// tclQuote renders s as one double-quoted Tcl word.
func tclQuote(s string) string {
	return "\"" + string(appendTclEscaped(nil, []byte(s))) + "\""
}

// appendTclEscaped escapes every byte that is special inside a double-quoted
// Tcl word or a braced expect body.
func appendTclEscaped(dst, src []byte) []byte {
	for _, b := range src {
		switch b {
		case '\\', '"', '$', '[', ']', '{', '}':
			dst = append(dst, '\\', b)
		default:
			dst = append(dst, b)
		}
	}
	return dst
}
