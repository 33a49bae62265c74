package source

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/adamavenir/weft/internal/timeline"
)

// RunDemo streams a scripted session into sess: a spooled backlog, thinking
// and assistant streaming with code and a table, tool calls with fast and
// slow output, a permission prompt, audio, system and error notes. Returns
// when the script ends or done closes.
func RunDemo(sess *Session, done <-chan struct{}) {
	d := demo{sess: sess, done: done}
	d.run()
}

type demo struct {
	sess *Session
	done <-chan struct{}
}

func (d *demo) run() {
	sessionID := "demo-" + uuid.NewString()[:8]
	d.apply(Event{Kind: EventSession, Session: sessionID, Title: "queue drain investigation"})

	d.backlog()

	d.add(EntryRecord{
		Type: RecordUser, ID: "demo-u1", TS: now(),
		Text: "why does the retry queue drain so slowly under load?",
	})
	if !d.pause(600) {
		return
	}

	d.busy(true)
	if !d.pause(700) {
		return
	}

	d.streamText(RecordThinking, "demo-th1",
		"Reading the drain loop first. The backoff is recomputed per item, ",
		"so one empty poll stretches the whole batch. That would explain the p50.",
	)
	d.apply(Event{Kind: EventFinish, ID: "demo-th1"})
	if !d.pause(500) {
		return
	}

	d.add(EntryRecord{
		Type: RecordTool, ID: "demo-t1", TS: now(),
		Name: "bash", Input: "rg -n 'time.Sleep' internal/queue",
	})
	if !d.pause(800) {
		return
	}
	d.add(EntryRecord{
		Type: RecordTool, ID: "demo-t1", TS: now(),
		Name: "bash", Input: "rg -n 'time.Sleep' internal/queue",
		Status: string(timeline.ToolOK), Preview: "3 matches", Bytes: 180,
	})
	d.apply(Event{Kind: EventOutput, ID: "demo-t1", Text: "" +
		"internal/queue/drain.go:41:\ttime.Sleep(backoff)\n" +
		"internal/queue/drain.go:77:\ttime.Sleep(poll)\n" +
		"internal/queue/drain_test.go:19:\ttime.Sleep(10 * time.Millisecond)",
	})
	if !d.pause(600) {
		return
	}

	// The edit tool settles immediately but its output lands late, so an
	// expanded row walks the whole retry schedule before the body fills in.
	d.add(EntryRecord{
		Type: RecordTool, ID: "demo-t2", TS: now(),
		Name: "edit", Input: "internal/queue/drain.go",
		Status: string(timeline.ToolOK), Preview: "moved sleep out of the item loop", Bytes: 240,
	})
	go d.lateOutput("demo-t2", 2600, ""+
		"@@ -38,9 +38,9 @@\n"+
		" \tfor _, job := range batch {\n"+
		" \t\tif err := worker.Run(job); err != nil {\n"+
		" \t\t\tqueue.Requeue(job)\n"+
		" \t\t}\n"+
		"-\t\ttime.Sleep(backoff)\n"+
		" \t}\n"+
		"+\ttime.Sleep(backoff)\n",
	)
	if !d.pause(500) {
		return
	}

	d.streamText(RecordAssistant, "demo-a1",
		"The drain loop sleeps per item instead of per batch, so every empty poll multiplies the wait.\n\n",
		"```go\n", "for _, job := range batch {\n", "\tif err := worker.Run(job); err != nil {\n",
		"\t\tqueue.Requeue(job)\n", "\t}\n", "\ttime.Sleep(backoff)\n", "}\n", "```\n\n",
		"Moving the sleep out of the loop keeps the batch together. Measured on the staging replay:\n\n",
		"| metric | before | after |\n", "| --- | --- | --- |\n",
		"| drain p50 | 4.1s | 0.3s |\n", "| requeues | 18% | 2% |\n",
	)
	d.apply(Event{Kind: EventFinish, ID: "demo-a1"})
	d.busy(false)
	if !d.pause(900) {
		return
	}

	d.add(EntryRecord{
		Type: RecordTool, ID: "demo-t3", TS: now(),
		Name: "todo", Input: "drain fix",
		Status: string(timeline.ToolOK), Preview: "1 of 3 done", Bytes: 70,
	})
	d.apply(Event{Kind: EventOutput, ID: "demo-t3", Text: "" +
		"[x] find the hot loop\n" +
		"[ ] move sleep out of the batch\n" +
		"[ ] add a drain regression test",
	})
	if !d.pause(600) {
		return
	}

	d.add(EntryRecord{
		Type: RecordTool, ID: "demo-t4", TS: now(),
		Name: "read", Input: "docs/drain-p50.png",
		Status: string(timeline.ToolOK), Preview: "48 KB image", Bytes: 48213,
	})
	d.apply(Event{Kind: EventOutput, ID: "demo-t4", Text: "PNG image data, 1180 x 620"})
	if !d.pause(700) {
		return
	}

	d.add(EntryRecord{
		Type: RecordAudio, ID: "demo-au1", TS: now(),
		Title: "standup recap", Seconds: 72, Size: 1258291,
	})
	if !d.pause(700) {
		return
	}

	d.add(EntryRecord{
		Type: RecordSystem, ID: "demo-s1", TS: now(),
		Text: "context compacted · 31 earlier messages summarized",
	})
	if !d.pause(500) {
		return
	}
	d.add(EntryRecord{
		Type: RecordError, ID: "demo-e1", TS: now(),
		Text: "transport reconnected after 2.1s",
	})
	if !d.pause(900) {
		return
	}

	d.add(EntryRecord{
		Type: RecordPermission, ID: "demo-p1", TS: now(),
		Tool: "bash", Request: "rm -rf build/cache",
	})
}

// backlog fills the window past its bound so the oldest entries spill to
// the spool and the load-more row appears.
func (d *demo) backlog() {
	base := time.Now().Add(-90 * time.Minute)
	for i := 0; i < 44; i++ {
		ts := base.Add(time.Duration(i) * time.Minute).UnixMilli()
		if i%2 == 0 {
			d.add(EntryRecord{
				Type: RecordUser, ID: fmt.Sprintf("demo-b%02d", i), TS: ts,
				Text: fmt.Sprintf("earlier question %d about the queue", i/2+1),
			})
		} else {
			d.add(EntryRecord{
				Type: RecordAssistant, ID: fmt.Sprintf("demo-b%02d", i), TS: ts,
				Text: fmt.Sprintf("Earlier answer %d, kept short.", i/2+1),
			})
		}
	}
}

func (d *demo) add(rec EntryRecord) {
	d.apply(Event{Kind: EventAdd, Entry: &rec})
}

func (d *demo) busy(b bool) {
	d.apply(Event{Kind: EventBusy, Busy: &b})
}

func (d *demo) apply(ev Event) {
	_ = d.sess.Apply(ev)
}

// streamText adds an empty text entry and streams the chunks into it.
func (d *demo) streamText(recordType, id string, chunks ...string) {
	d.add(EntryRecord{Type: recordType, ID: id, TS: now()})
	for _, chunk := range chunks {
		if !d.pause(90) {
			return
		}
		d.apply(Event{Kind: EventStream, ID: id, Delta: chunk})
	}
}

func (d *demo) lateOutput(id string, delayMS int, text string) {
	if !d.pause(delayMS) {
		return
	}
	d.apply(Event{Kind: EventOutput, ID: id, Text: text})
}

func (d *demo) pause(ms int) bool {
	select {
	case <-time.After(time.Duration(ms) * time.Millisecond):
		return true
	case <-d.done:
		return false
	}
}

func now() int64 {
	return time.Now().UnixMilli()
}
