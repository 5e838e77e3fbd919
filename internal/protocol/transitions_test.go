package protocol

import "testing"

func TestAbortedAlwaysLegal(t *testing.T) {
	states := []State{None, Connected, RulesReceived, ChoosingName, SentName, NotAcked, Acked, Guessing, AwaitingFeedback, GotFeedback, Finished}
	for _, s := range states {
		if !ClientLegal.Legal(s, Aborted) {
			t.Errorf("ClientLegal: %v -> ABORTED should always be legal", s)
		}
		if !ServerLegal.Legal(s, Aborted) {
			t.Errorf("ServerLegal: %v -> ABORTED should always be legal", s)
		}
	}
	if !ClientLegal.Legal(Aborted, Disconnected) {
		t.Error("ABORTED -> DISCONNECTED must be legal for the client")
	}
	if !ServerLegal.Legal(Aborted, Disconnected) {
		t.Error("ABORTED -> DISCONNECTED must be legal for the server")
	}
}

func TestIllegalTransitionsRejected(t *testing.T) {
	illegal := [][2]State{
		{Connected, Guessing},
		{RulesReceived, Finished},
		{Guessing, NotAcked},
	}
	for _, pair := range illegal {
		if ClientLegal.Legal(pair[0], pair[1]) {
			t.Errorf("ClientLegal unexpectedly allows %v -> %v", pair[0], pair[1])
		}
	}
}

func TestServerReceiveLegalSet(t *testing.T) {
	legal := [][2]State{
		{None, Connected},
		{ChoosingName, SentName},
		{NotAcked, Acked},
		{Guessing, AwaitingFeedback},
	}
	for _, pair := range legal {
		if !ServerLegal.Legal(pair[0], pair[1]) {
			t.Errorf("ServerLegal should allow %v -> %v", pair[0], pair[1])
		}
	}
	if ServerLegal.Legal(SentName, Guessing) {
		t.Error("ServerLegal should not allow SENT_NAME -> GUESSING")
	}
}
