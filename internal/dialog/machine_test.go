package dialog

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/m3rciful/refbot/core/scheduler"
	"github.com/m3rciful/refbot/internal/access"
	"github.com/m3rciful/refbot/internal/catalog"
	"github.com/m3rciful/refbot/internal/messages"
)

type sentMessage struct {
	ChatID  int64
	Text    string
	Kb      *Keyboard
	Kind    string
	FileIDs []string
}

type fakeResponder struct {
	mu      sync.Mutex
	nextID  int
	Sent    []sentMessage
	Deleted []int
}

func (f *fakeResponder) push(msg sentMessage) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	f.Sent = append(f.Sent, msg)
	return f.nextID
}

func (f *fakeResponder) Send(_ context.Context, chatID int64, text string, kb *Keyboard) (int, error) {
	return f.push(sentMessage{ChatID: chatID, Text: text, Kb: kb, Kind: "text"}), nil
}

func (f *fakeResponder) SendPhoto(_ context.Context, chatID int64, fileID, caption string, kb *Keyboard) (int, error) {
	return f.push(sentMessage{ChatID: chatID, Text: caption, Kb: kb, Kind: "photo", FileIDs: []string{fileID}}), nil
}

func (f *fakeResponder) SendDocument(_ context.Context, chatID int64, fileID, caption string, kb *Keyboard) (int, error) {
	return f.push(sentMessage{ChatID: chatID, Text: caption, Kb: kb, Kind: "document", FileIDs: []string{fileID}}), nil
}

func (f *fakeResponder) SendAlbum(_ context.Context, chatID int64, photoIDs []string, caption string) ([]int, error) {
	var ids []int
	for range photoIDs {
		ids = append(ids, f.push(sentMessage{ChatID: chatID, Text: caption, Kind: "album", FileIDs: photoIDs}))
	}
	return ids, nil
}

func (f *fakeResponder) Edit(_ context.Context, chatID int64, _ int, text string, kb *Keyboard) error {
	f.push(sentMessage{ChatID: chatID, Text: text, Kb: kb, Kind: "edit"})
	return nil
}

func (f *fakeResponder) Delete(_ context.Context, _ int64, messageID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Deleted = append(f.Deleted, messageID)
	return nil
}

func (f *fakeResponder) lastText() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Sent) == 0 {
		return ""
	}
	return f.Sent[len(f.Sent)-1].Text
}

type countingStore struct {
	inner catalog.Store
	Loads int
	Saves int
}

func (c *countingStore) Load(ctx context.Context, kind catalog.Kind) (catalog.Collection, error) {
	c.Loads++
	return c.inner.Load(ctx, kind)
}

func (c *countingStore) Save(ctx context.Context, kind catalog.Kind, col catalog.Collection) error {
	c.Saves++
	return c.inner.Save(ctx, kind, col)
}

type fixture struct {
	machine *Machine
	resp    *fakeResponder
	sched   *scheduler.Immediate
	store   *countingStore
}

const (
	testUser int64 = 1
	testChat int64 = 10
)

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := &countingStore{inner: catalog.NewFileStore(t.TempDir(), nil)}
	resp := &fakeResponder{}
	sched := scheduler.NewImmediate()
	m := New(Config{
		Store:              store,
		Scheduler:          sched,
		Responder:          resp,
		Gate:               access.NewGate([]int64{testUser}),
		AttachmentsEnabled: true,
	})
	return &fixture{machine: m, resp: resp, sched: sched, store: store}
}

func textEvent(text string) InboundEvent {
	return InboundEvent{
		UserID: testUser, ChatID: testChat, DisplayName: "tester",
		Message: &MessageEvent{ID: 1, Text: text},
	}
}

func photoEvent(fileID, albumID string) InboundEvent {
	return InboundEvent{
		UserID: testUser, ChatID: testChat, DisplayName: "tester",
		Message: &MessageEvent{ID: 1, Photo: fileID, AlbumID: albumID},
	}
}

func callbackEvent(token string) InboundEvent {
	return InboundEvent{
		UserID: testUser, ChatID: testChat, DisplayName: "tester",
		Callback: &CallbackEvent{MessageID: 5, Token: token},
	}
}

func (f *fixture) handle(t *testing.T, ev InboundEvent) {
	t.Helper()
	if err := f.machine.HandleEvent(context.Background(), ev); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}
}

func (f *fixture) guide(t *testing.T) catalog.Collection {
	t.Helper()
	col, err := f.store.inner.Load(context.Background(), catalog.KindGuide)
	if err != nil {
		t.Fatalf("load guide: %v", err)
	}
	return col
}

func (f *fixture) sessionState(t *testing.T) (State, bool) {
	t.Helper()
	var st State
	var active bool
	f.machine.Sessions().Peek(Key{UserID: testUser, ChatID: testChat}, func(s *Session) {
		st, active = s.State, s.Active
	})
	return st, active
}

func TestSimpleAddCommitsImmediately(t *testing.T) {
	f := newFixture(t)

	f.handle(t, textEvent(messages.BtnAdd))
	f.handle(t, textEvent("Printer jam"))
	f.handle(t, textEvent("Restart printer"))

	col := f.guide(t)
	if len(col.Entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(col.Entries))
	}
	e := col.Entries[0]
	if e.ID != 1 || e.Question != "Printer jam" || e.Answer != "Restart printer" {
		t.Fatalf("entry = %+v", e)
	}
	if !strings.Contains(f.resp.lastText(), "добавлен") {
		t.Fatalf("no confirmation, last = %q", f.resp.lastText())
	}
	st, active := f.sessionState(t)
	if st != StateIdle || active {
		t.Fatalf("session not reset: state=%v active=%v", st, active)
	}
}

func TestAddAssignsNextID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seed := catalog.Collection{Entries: []catalog.Entry{{ID: 4, Question: "q", Answer: "a"}}}
	if err := f.store.inner.Save(ctx, catalog.KindGuide, seed); err != nil {
		t.Fatalf("seed: %v", err)
	}

	f.handle(t, textEvent(messages.BtnAdd))
	f.handle(t, textEvent("q2"))
	f.handle(t, textEvent("a2"))

	col := f.guide(t)
	if len(col.Entries) != 2 || col.Entries[1].ID != 5 {
		t.Fatalf("entries = %+v", col.Entries)
	}
}

func TestQuestionRejectsNonText(t *testing.T) {
	f := newFixture(t)
	f.handle(t, textEvent(messages.BtnAdd))
	f.handle(t, photoEvent("p1", ""))

	st, active := f.sessionState(t)
	if st != StateQuestion || !active {
		t.Fatalf("state changed on bad input: %v %v", st, active)
	}
	if len(f.guide(t).Entries) != 0 {
		t.Fatalf("collection mutated")
	}
}

func TestSinglePhotoThenSentinel(t *testing.T) {
	f := newFixture(t)
	f.handle(t, textEvent(messages.BtnAdd))
	f.handle(t, textEvent("q"))
	f.handle(t, InboundEvent{
		UserID: testUser, ChatID: testChat,
		Message: &MessageEvent{Photo: "p1", Caption: "caption answer"},
	})

	st, _ := f.sessionState(t)
	if st != StateAnswerAttachments {
		t.Fatalf("state = %v, want attachments", st)
	}
	f.handle(t, textEvent(messages.BtnDone))

	col := f.guide(t)
	if len(col.Entries) != 1 {
		t.Fatalf("entries = %d", len(col.Entries))
	}
	e := col.Entries[0]
	if len(e.Photos) != 1 || e.Photos[0] != "p1" || e.Answer != "caption answer" {
		t.Fatalf("entry = %+v", e)
	}
}

func TestAlbumAddCommitsOnTimer(t *testing.T) {
	f := newFixture(t)
	f.handle(t, textEvent(messages.BtnAdd))
	f.handle(t, textEvent("q"))
	f.handle(t, photoEvent("p1", "g1"))
	f.handle(t, photoEvent("p2", "g1"))
	f.handle(t, photoEvent("p3", "g1"))

	if len(f.guide(t).Entries) != 0 {
		t.Fatalf("committed before debounce fired")
	}
	if f.resp.lastText() != messages.Loading {
		t.Fatalf("burst produced chatter beyond the loading indicator: %q", f.resp.lastText())
	}
	if f.sched.Pending() != 1 {
		t.Fatalf("pending timers = %d, want 1 (restart-on-arrival)", f.sched.Pending())
	}
	f.sched.Flush()

	col := f.guide(t)
	if len(col.Entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(col.Entries))
	}
	e := col.Entries[0]
	want := []string{"p1", "p2", "p3"}
	if len(e.Photos) != 3 {
		t.Fatalf("photos = %v", e.Photos)
	}
	for i, p := range want {
		if e.Photos[i] != p {
			t.Fatalf("photo order = %v, want %v", e.Photos, want)
		}
	}
	if len(f.resp.Deleted) != 1 {
		t.Fatalf("loading indicator not removed: deleted=%v", f.resp.Deleted)
	}
	st, active := f.sessionState(t)
	if st != StateIdle || active {
		t.Fatalf("session not reset after commit")
	}
}

func TestAlbumCommitIdempotent(t *testing.T) {
	f := newFixture(t)
	f.handle(t, textEvent(messages.BtnAdd))
	f.handle(t, textEvent("q"))
	f.handle(t, photoEvent("p1", "g1"))
	f.handle(t, photoEvent("p2", "g1"))

	// Interrupting message closes the burst and commits.
	f.handle(t, textEvent("stray"))
	if got := len(f.guide(t).Entries); got != 1 {
		t.Fatalf("entries after interrupt = %d, want 1", got)
	}

	// The (cancelled) timer firing anyway must not double-write.
	f.sched.Flush()
	if got := len(f.guide(t).Entries); got != 1 {
		t.Fatalf("entries after timer = %d, want exactly 1", got)
	}
	if f.store.Saves != 1 {
		t.Fatalf("saves = %d, want 1", f.store.Saves)
	}
}

func TestAlbumDeduplicatesFirstArrivalOrder(t *testing.T) {
	f := newFixture(t)
	f.handle(t, textEvent(messages.BtnAdd))
	f.handle(t, textEvent("q"))
	f.handle(t, photoEvent("p1", "g1"))
	f.handle(t, photoEvent("p2", "g1"))
	f.handle(t, photoEvent("p1", "g1"))
	f.sched.Flush()

	col := f.guide(t)
	if len(col.Entries) != 1 {
		t.Fatalf("entries = %d", len(col.Entries))
	}
	photos := col.Entries[0].Photos
	if len(photos) != 2 || photos[0] != "p1" || photos[1] != "p2" {
		t.Fatalf("photos = %v", photos)
	}
}

func TestAttachmentValidationKeepsState(t *testing.T) {
	f := newFixture(t)
	f.handle(t, textEvent(messages.BtnAdd))
	f.handle(t, textEvent("q"))
	f.handle(t, InboundEvent{
		UserID: testUser, ChatID: testChat,
		Message: &MessageEvent{Photo: "p1"},
	})

	// disallowed MIME
	f.handle(t, InboundEvent{
		UserID: testUser, ChatID: testChat,
		Message: &MessageEvent{Document: &DocumentEvent{FileID: "d1", MIME: "application/zip", Size: 100}},
	})
	if f.resp.lastText() != messages.BadDocumentType {
		t.Fatalf("last = %q", f.resp.lastText())
	}

	// oversized document
	f.handle(t, InboundEvent{
		UserID: testUser, ChatID: testChat,
		Message: &MessageEvent{Document: &DocumentEvent{FileID: "d2", MIME: "application/pdf", Size: MaxDocumentSize + 1}},
	})
	if f.resp.lastText() != messages.DocumentTooBig {
		t.Fatalf("last = %q", f.resp.lastText())
	}

	st, active := f.sessionState(t)
	if st != StateAnswerAttachments || !active {
		t.Fatalf("state = %v active=%v", st, active)
	}
	var docs int
	f.machine.Sessions().Peek(Key{UserID: testUser, ChatID: testChat}, func(s *Session) {
		docs = len(s.Documents)
	})
	if docs != 0 {
		t.Fatalf("rejected documents stored: %d", docs)
	}
	if len(f.guide(t).Entries) != 0 {
		t.Fatalf("partial commit happened")
	}
}

func TestAlbumCapRejectsOverflow(t *testing.T) {
	f := newFixture(t)
	f.handle(t, textEvent(messages.BtnAdd))
	f.handle(t, textEvent("q"))
	key := Key{UserID: testUser, ChatID: testChat}
	f.machine.Sessions().Do(key, func(s *Session) {
		s.State = StateAnswerAttachments
		for i := 0; i < AlbumCap; i++ {
			s.Photos = append(s.Photos, string(rune('a'+i)))
		}
	})

	f.handle(t, InboundEvent{
		UserID: testUser, ChatID: testChat,
		Message: &MessageEvent{Photo: "extra"},
	})
	if f.resp.lastText() != messages.TooManyFiles(AlbumCap) {
		t.Fatalf("last = %q", f.resp.lastText())
	}
	var photos int
	f.machine.Sessions().Peek(key, func(s *Session) { photos = len(s.Photos) })
	if photos != AlbumCap {
		t.Fatalf("photos = %d, want %d", photos, AlbumCap)
	}
}

func TestInactiveEventsNeverMutateCollections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seed := catalog.Collection{Entries: []catalog.Entry{{ID: 1, Question: "q", Answer: "a"}}}
	if err := f.store.inner.Save(ctx, catalog.KindGuide, seed); err != nil {
		t.Fatalf("seed: %v", err)
	}
	f.store.Saves = 0

	f.handle(t, textEvent(messages.BtnDone))
	f.handle(t, textEvent("random words"))
	f.handle(t, InboundEvent{
		UserID: testUser, ChatID: testChat,
		Message: &MessageEvent{Photo: "p1"},
	})

	if f.store.Saves != 0 {
		t.Fatalf("idle events caused %d saves", f.store.Saves)
	}
	col := f.guide(t)
	if len(col.Entries) != 1 || col.Entries[0].Answer != "a" {
		t.Fatalf("collection mutated: %+v", col.Entries)
	}
}

func TestEditDeleteScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seed := catalog.Collection{Entries: []catalog.Entry{
		{ID: 3, Question: "keep one", Answer: "a"},
		{ID: 7, Question: "remove me", Answer: "b"},
		{ID: 9, Question: "keep two", Answer: "c"},
	}}
	if err := f.store.inner.Save(ctx, catalog.KindGuide, seed); err != nil {
		t.Fatalf("seed: %v", err)
	}

	f.handle(t, textEvent(messages.BtnEdit))
	f.handle(t, callbackEvent("edit_guide_question_7"))
	confirmBefore := len(f.resp.Sent)
	f.handle(t, callbackEvent("edit_guide_field_delete"))

	col := f.guide(t)
	if _, _, found := col.Find(7); found {
		t.Fatalf("id 7 still present")
	}
	if len(col.Entries) != 2 || col.Entries[0].ID != 3 || col.Entries[1].ID != 9 {
		t.Fatalf("other ids changed: %+v", col.Entries)
	}
	if got := len(f.resp.Sent) - confirmBefore; got != 1 {
		t.Fatalf("confirmation messages = %d, want 1", got)
	}
	if f.resp.lastText() != messages.EntryDeleted {
		t.Fatalf("last = %q", f.resp.lastText())
	}
	st, active := f.sessionState(t)
	if st != StateIdle || active {
		t.Fatalf("session not reset")
	}
}

func TestEditReplacePhotoWholesale(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seed := catalog.Collection{Entries: []catalog.Entry{
		{ID: 1, Question: "q", Answer: "a", Photos: []string{"old1", "old2"}, Documents: []string{"d1"}},
	}}
	if err := f.store.inner.Save(ctx, catalog.KindGuide, seed); err != nil {
		t.Fatalf("seed: %v", err)
	}

	f.handle(t, textEvent(messages.BtnEdit))
	f.handle(t, callbackEvent("edit_guide_question_1"))
	f.handle(t, callbackEvent("edit_guide_field_photo"))
	f.handle(t, InboundEvent{
		UserID: testUser, ChatID: testChat,
		Message: &MessageEvent{Photo: "new"},
	})

	col := f.guide(t)
	e := col.Entries[0]
	if len(e.Photos) != 1 || e.Photos[0] != "new" || len(e.Documents) != 0 {
		t.Fatalf("replace not wholesale: %+v", e)
	}
}

func TestEditQuestionValue(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seed := catalog.Collection{Entries: []catalog.Entry{{ID: 1, Question: "old", Answer: "a"}}}
	if err := f.store.inner.Save(ctx, catalog.KindGuide, seed); err != nil {
		t.Fatalf("seed: %v", err)
	}

	f.handle(t, textEvent(messages.BtnEdit))
	f.handle(t, callbackEvent("edit_guide_question_1"))
	f.handle(t, callbackEvent("edit_guide_field_question"))
	f.handle(t, textEvent("new question"))

	col := f.guide(t)
	if col.Entries[0].Question != "new question" {
		t.Fatalf("question = %q", col.Entries[0].Question)
	}
}

func TestUnauthorizedDenied(t *testing.T) {
	f := newFixture(t)
	ev := InboundEvent{
		UserID: 999, ChatID: testChat,
		Message: &MessageEvent{Text: messages.BtnGuide},
	}
	f.handle(t, ev)

	if f.resp.lastText() != messages.AccessDenied {
		t.Fatalf("last = %q", f.resp.lastText())
	}
	if f.machine.Sessions().Len() != 0 {
		t.Fatalf("session created for denied user")
	}
	if f.store.Loads != 0 {
		t.Fatalf("collection read for denied user: %d", f.store.Loads)
	}
}

func TestUnauthorizedCallbackDenied(t *testing.T) {
	f := newFixture(t)
	ev := InboundEvent{
		UserID: 999, ChatID: testChat,
		Callback: &CallbackEvent{Token: "guide_question_1"},
	}
	f.handle(t, ev)
	if f.resp.lastText() != messages.AccessDenied {
		t.Fatalf("last = %q", f.resp.lastText())
	}
	if f.machine.Sessions().Len() != 0 || f.store.Loads != 0 {
		t.Fatalf("denied callback touched state")
	}
}

func TestCancelResetsAndCancelsTimer(t *testing.T) {
	f := newFixture(t)
	f.handle(t, textEvent(messages.BtnAdd))
	f.handle(t, textEvent("q"))
	f.handle(t, photoEvent("p1", "g1"))
	if f.sched.Pending() != 1 {
		t.Fatalf("debounce not armed")
	}

	if err := f.machine.CancelDialog(context.Background(), textEvent("/cancel")); err != nil {
		t.Fatalf("CancelDialog: %v", err)
	}
	if f.sched.Pending() != 0 {
		t.Fatalf("debounce survived cancel")
	}
	f.sched.Flush()
	if len(f.guide(t).Entries) != 0 {
		t.Fatalf("orphaned commit after cancel")
	}
	st, active := f.sessionState(t)
	if st != StateIdle || active {
		t.Fatalf("session not reset")
	}
}

func TestShowAnswerSchedulesSweep(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seed := catalog.Collection{Entries: []catalog.Entry{
		{ID: 2, Question: "q", Answer: "a", Photos: []string{"p1"}},
	}}
	if err := f.store.inner.Save(ctx, catalog.KindGuide, seed); err != nil {
		t.Fatalf("seed: %v", err)
	}

	f.handle(t, callbackEvent("guide_question_2"))

	last := f.resp.Sent[len(f.resp.Sent)-1]
	if last.Kind != "photo" || last.FileIDs[0] != "p1" {
		t.Fatalf("answer not sent as photo: %+v", last)
	}
	if last.Kb == nil || len(last.Kb.Inline) == 0 || last.Kb.Inline[0][0].Data != "delete_answer_2" {
		t.Fatalf("delete button missing: %+v", last.Kb)
	}
	if f.sched.Pending() != 1 {
		t.Fatalf("sweep not scheduled")
	}
	f.sched.Flush()
	if len(f.resp.Deleted) != 1 {
		t.Fatalf("sweep deleted %d messages", len(f.resp.Deleted))
	}
}

func TestDeleteAnswerButton(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seed := catalog.Collection{Entries: []catalog.Entry{{ID: 2, Question: "q", Answer: "a"}}}
	if err := f.store.inner.Save(ctx, catalog.KindGuide, seed); err != nil {
		t.Fatalf("seed: %v", err)
	}

	f.handle(t, callbackEvent("guide_question_2"))
	f.handle(t, callbackEvent("delete_answer_2"))
	if len(f.resp.Deleted) != 1 {
		t.Fatalf("deleted = %v", f.resp.Deleted)
	}

	// Pressing again is a no-op.
	f.handle(t, callbackEvent("delete_answer_2"))
	if len(f.resp.Deleted) != 1 {
		t.Fatalf("second press deleted again: %v", f.resp.Deleted)
	}
}

func TestSearchFallback(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seed := catalog.Collection{Entries: []catalog.Entry{
		{ID: 1, Question: "Не работает принтер", Answer: "Перезагрузить"},
		{ID: 2, Question: "Сканер завис", Answer: ""},
	}}
	if err := f.store.inner.Save(ctx, catalog.KindGuide, seed); err != nil {
		t.Fatalf("seed: %v", err)
	}

	f.handle(t, textEvent("принтер"))
	last := f.resp.Sent[len(f.resp.Sent)-1]
	if last.Text != messages.ChooseItem || last.Kb == nil || len(last.Kb.Inline) != 1 {
		t.Fatalf("search page wrong: %+v", last)
	}
	if last.Kb.Inline[0][0].Data != "guide_question_1" {
		t.Fatalf("search result token = %q", last.Kb.Inline[0][0].Data)
	}

	f.handle(t, textEvent("ксерокс"))
	if f.resp.lastText() != messages.SearchEmpty {
		t.Fatalf("last = %q", f.resp.lastText())
	}
}

func TestGuideMenuPagination(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	var seed catalog.Collection
	for i := 1; i <= 20; i++ {
		seed.Entries = append(seed.Entries, catalog.Entry{ID: i, Question: "q", Answer: "a"})
	}
	if err := f.store.inner.Save(ctx, catalog.KindGuide, seed); err != nil {
		t.Fatalf("seed: %v", err)
	}

	f.handle(t, textEvent(messages.BtnGuide))
	first := f.resp.Sent[len(f.resp.Sent)-1]
	if len(first.Kb.Inline) != 16 { // 15 entries + nav row
		t.Fatalf("page rows = %d", len(first.Kb.Inline))
	}
	nav := first.Kb.Inline[15]
	if len(nav) != 1 || nav[0].Data != "guide_page_1" {
		t.Fatalf("nav = %+v", nav)
	}

	f.handle(t, callbackEvent("guide_page_1"))
	second := f.resp.Sent[len(f.resp.Sent)-1]
	if second.Kind != "edit" {
		t.Fatalf("page flip did not edit in place: %+v", second)
	}
	if len(second.Kb.Inline) != 6 { // 5 entries + nav row
		t.Fatalf("second page rows = %d", len(second.Kb.Inline))
	}
}

func TestAlbumFoldHoldsAttachmentCap(t *testing.T) {
	f := newFixture(t)
	f.handle(t, textEvent(messages.BtnAdd))
	f.handle(t, textEvent("q"))
	f.handle(t, photoEvent("s1", ""))
	f.machine.Sessions().Do(Key{UserID: testUser, ChatID: testChat}, func(s *Session) {
		s.Photos = append(s.Photos, "s2", "s3", "s4", "s5", "s6", "s7", "s8")
	})

	f.handle(t, photoEvent("a1", "g1"))
	f.handle(t, photoEvent("a2", "g1"))
	// The third burst photo would push the combined count past the cap.
	f.handle(t, photoEvent("a3", "g1"))
	if f.resp.lastText() != messages.TooManyFiles(AlbumCap) {
		t.Fatalf("overflow photo not rejected: %q", f.resp.lastText())
	}

	f.sched.Flush()
	f.handle(t, textEvent(messages.BtnDone))

	col := f.guide(t)
	if len(col.Entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(col.Entries))
	}
	if total := len(col.Entries[0].Photos) + len(col.Entries[0].Documents); total != AlbumCap {
		t.Fatalf("attachments = %d, want %d", total, AlbumCap)
	}
}

func TestMenuPressDuringClosingBurstActsOnce(t *testing.T) {
	f := newFixture(t)
	f.handle(t, textEvent(messages.BtnAdd))
	f.handle(t, textEvent("q"))
	f.handle(t, photoEvent("p1", "g1"))
	f.handle(t, photoEvent("p2", "g1"))

	// The menu press closes the burst; its commit must not swallow the press.
	f.handle(t, textEvent(messages.BtnGuide))

	if got := len(f.guide(t).Entries); got != 1 {
		t.Fatalf("entries after interrupt = %d, want 1", got)
	}
	if f.resp.lastText() != messages.ChooseItem {
		t.Fatalf("menu press swallowed: %q", f.resp.lastText())
	}
	st, active := f.sessionState(t)
	if st != StateIdle || active {
		t.Fatalf("state = %v active = %v after interrupt", st, active)
	}
}

func TestSentinelDuringClosingBurstCommitsOnce(t *testing.T) {
	f := newFixture(t)
	f.handle(t, textEvent(messages.BtnAdd))
	f.handle(t, textEvent("q"))
	f.handle(t, photoEvent("p1", "g1"))

	// The sentinel arrives while the burst is still open; the flush it
	// triggers already commits, so no second dialog may start.
	f.handle(t, textEvent(messages.BtnDone))

	if got := len(f.guide(t).Entries); got != 1 {
		t.Fatalf("entries = %d, want 1", got)
	}
	if f.store.Saves != 1 {
		t.Fatalf("saves = %d, want 1", f.store.Saves)
	}
	if f.resp.lastText() != messages.EntrySaved(true, "q") {
		t.Fatalf("last message = %q", f.resp.lastText())
	}
}
