package internal

import "io"

// blackholeConn is the Blackhole outbound of spec §4.11: reads resolve as
// immediate EOF, writes report success while discarding everything.
type blackholeConn struct{}

func (b *blackholeConn) Read(p []byte) (int, error)  { return 0, io.EOF }
func (b *blackholeConn) Write(p []byte) (int, error) { return len(p), nil }
func (b *blackholeConn) Close() error                { return nil }
