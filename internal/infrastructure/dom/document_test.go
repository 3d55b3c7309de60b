package dom

import (
	"testing"

	"github.com/doeshing/sns-guardian/internal/ports"
)

func TestQueryAllBySelector(t *testing.T) {
	doc := NewDocument("x.com")
	a := doc.Add("one", "button", "[data-testid=tweetButton]")
	doc.Add("two", "button")

	if got := len(doc.QueryAll("button")); got != 2 {
		t.Fatalf("QueryAll(button) = %d, want 2", got)
	}
	matches := doc.QueryAll("[data-testid=tweetButton]")
	if len(matches) != 1 || matches[0].Key() != a.Key() {
		t.Fatalf("unexpected matches %v", matches)
	}

	doc.Remove(a)
	if got := len(doc.QueryAll("[data-testid=tweetButton]")); got != 0 {
		t.Fatalf("removed element still matched")
	}
}

func TestObserveUntilStopped(t *testing.T) {
	doc := NewDocument("x.com")
	calls := 0
	stop := doc.Observe(func() { calls++ })

	doc.Add("a", "div")
	doc.Mutate()
	stop()
	doc.Mutate()

	if calls != 2 {
		t.Fatalf("observer called %d times, want 2", calls)
	}
}

func TestPreventedClickSkipsNativeAction(t *testing.T) {
	doc := NewDocument("x.com")
	el := doc.Add("Post", "button")
	native := 0
	el.OnNative(func() { native++ })

	if !el.UserClick() {
		t.Fatalf("unprevented click should run the native action")
	}

	el.OnCapture(func(ev ports.ClickEvent) {
		ev.PreventDefault()
		ev.StopPropagation()
	})
	second := false
	el.OnCapture(func(ports.ClickEvent) { second = true })

	if el.UserClick() {
		t.Fatalf("prevented click ran the native action")
	}
	if second {
		t.Fatalf("stopped event reached a later listener")
	}
	if native != 1 || el.NativeCount() != 1 {
		t.Fatalf("native ran %d times (count %d), want 1", native, el.NativeCount())
	}
	if el.ListenerCount() != 2 {
		t.Fatalf("ListenerCount = %d, want 2", el.ListenerCount())
	}
}
