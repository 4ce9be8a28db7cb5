package rank

import (
	"testing"

	"github.com/cwbudde/distconv/internal/model"
	"github.com/cwbudde/distconv/internal/transport"
)

func headerWithStart(start int) model.ChunkHeader {
	return model.ChunkHeader{TrueStart: int32(start)}
}

func TestSendRecvStampsSender(t *testing.T) {
	w := NewWorld(3)
	defer w.Close()

	if err := w.Send(0, 2, Message{Tag: transport.TagWorkHeaderSend}); err != nil {
		t.Fatalf("Send() err = %v", err)
	}
	msg := w.Recv(2)
	if msg.From != 0 {
		t.Fatalf("Recv().From = %d, want 0", msg.From)
	}
	if msg.Tag != transport.TagWorkHeaderSend {
		t.Fatalf("Recv().Tag = %v, want %v", msg.Tag, transport.TagWorkHeaderSend)
	}
}

func TestSendOutOfRange(t *testing.T) {
	w := NewWorld(2)
	defer w.Close()

	if err := w.Send(0, 5, Message{}); err == nil {
		t.Fatal("Send(out of range) = nil error, want error")
	}
}

func TestProbeDoesNotConsume(t *testing.T) {
	w := NewWorld(2)
	defer w.Close()

	w.Send(0, 1, Message{Tag: transport.TagTerminate})

	if !w.Probe(1) {
		t.Fatal("Probe() = false, want true")
	}
	if !w.Probe(1) {
		t.Fatal("second Probe() = false, want true (message still pending)")
	}
	msg := w.Recv(1)
	if msg.Tag != transport.TagTerminate {
		t.Fatalf("Recv().Tag = %v, want %v", msg.Tag, transport.TagTerminate)
	}
}

func TestFIFOOrderPerSender(t *testing.T) {
	w := NewWorld(2)
	defer w.Close()

	for i := 0; i < 5; i++ {
		w.Send(0, 1, Message{Header: headerWithStart(i)})
	}
	for i := 0; i < 5; i++ {
		msg := w.Recv(1)
		if int(msg.Header.TrueStart) != i {
			t.Fatalf("message %d: TrueStart = %d, want %d", i, msg.Header.TrueStart, i)
		}
	}
}
