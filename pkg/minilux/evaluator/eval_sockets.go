package evaluator

import (
	"net"
	"strconv"
	"strings"

	"github.com/minilux-lang/minilux/pkg/minilux/ast"
)

// evalSockOpen connects a named TCP socket. The port is coerced through the
// usual integer rules and truncated to 16 bits. Connection failure is a
// hard error; reopening a name replaces (and closes) the previous socket.
func evalSockOpen(node *ast.SockOpenStatement, env *Environment) Object {
	host := Eval(node.Host, env)
	if isError(host) {
		return host
	}
	port := Eval(node.Port, env)
	if isError(port) {
		return port
	}

	addr := net.JoinHostPort(render(host), strconv.Itoa(int(uint16(toInt(port)))))

	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return newErrorAt("NET-0001", node.Token.Line, node.Token.Column,
			map[string]any{"Address": addr, "GoError": err.Error()})
	}

	if old, ok := env.sockets[node.Name]; ok {
		old.Close()
	}
	env.sockets[node.Name] = conn

	return NULL
}

// evalSockClose closes and forgets a socket. Unknown names are a no-op.
func evalSockClose(node *ast.SockCloseStatement, env *Environment) Object {
	if conn, ok := env.sockets[node.Name]; ok {
		conn.Close()
		delete(env.sockets, node.Name)
	}
	return NULL
}

// evalSockWrite sends the rendered data best-effort: write errors and
// unknown socket names are both silently ignored.
func evalSockWrite(node *ast.SockWriteStatement, env *Environment) Object {
	data := Eval(node.Data, env)
	if isError(data) {
		return data
	}

	if conn, ok := env.sockets[node.Name]; ok {
		_, _ = conn.Write([]byte(render(data)))
	}
	return NULL
}

// evalSockRead reads whatever is available, up to 1024 bytes, and binds it
// as a String. Invalid UTF-8 sequences become replacement characters; read
// errors and unknown socket names bind the empty string.
func evalSockRead(node *ast.SockReadStatement, env *Environment) Object {
	conn, ok := env.sockets[node.Name]
	if !ok {
		env.Set(node.Var, &String{Value: ""})
		return NULL
	}

	buf := make([]byte, 1024)
	n, err := conn.Read(buf)
	if err != nil && n == 0 {
		env.Set(node.Var, &String{Value: ""})
		return NULL
	}

	env.Set(node.Var, &String{Value: strings.ToValidUTF8(string(buf[:n]), "�")})
	return NULL
}
