package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubTranslator lets tests script the collaborator's behavior.
type stubTranslator struct {
	text  string
	err   error
	calls int
}

func (s *stubTranslator) Translate(ctx context.Context, text, languageCode string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.text, nil
}

func approvedItem(kind ItemKind, title string, tags ...string) Item {
	return Item{
		ID:           strings.ToLower(strings.ReplaceAll(title, " ", "-")),
		Kind:         kind,
		Title:        title,
		AudienceTags: tags,
		Status:       StatusApproved,
		CreatedAt:    testNow.AddDate(0, 0, -1),
	}
}

func gradeFiveParent() Recipient {
	return Recipient{
		ID:       "parent-1",
		Language: "en",
		Status:   RecipientActive,
		Children: []Child{{Name: "Maya", Grade: 5}},
	}
}

func testAssembler(translator Translator) Assembler {
	a := NewAssembler(translator, nil)
	a.Now = testClock
	return a
}

func TestAssembleFiltersByAudienceOverlap(t *testing.T) {
	a := testAssembler(nil)

	corpus := []Item{
		approvedItem(KindEvent, "Basketball Game", "grade_5", "Basketball"),
		approvedItem(KindEvent, "Grade Five Trip", "grade_5"),
		approvedItem(KindAnnouncement, "School Photos", "all"),
		approvedItem(KindEvent, "Grade Six Camp", "grade_6"),
	}

	digest, err := a.Assemble(context.Background(), corpus, gradeFiveParent(), 7)
	require.NoError(t, err)

	assert.Equal(t, 3, digest.ItemCount())
	assert.Contains(t, digest.Text, "Basketball Game")
	assert.Contains(t, digest.Text, "Grade Five Trip")
	assert.Contains(t, digest.Text, "School Photos")
	assert.NotContains(t, digest.Text, "Grade Six Camp")
}

func TestAssembleSkipsUnapprovedAndStale(t *testing.T) {
	a := testAssembler(nil)

	pending := approvedItem(KindEvent, "Pending Event", "all")
	pending.Status = StatusPending

	stale := approvedItem(KindEvent, "Old Event", "all")
	stale.CreatedAt = testNow.AddDate(0, 0, -10)

	fresh := approvedItem(KindEvent, "Fresh Event", "all")

	digest, err := a.Assemble(context.Background(), []Item{pending, stale, fresh}, gradeFiveParent(), 7)
	require.NoError(t, err)

	assert.Equal(t, 1, digest.ItemCount())
	assert.Contains(t, digest.Text, "Fresh Event")
	assert.NotContains(t, digest.Text, "Pending Event")
	assert.NotContains(t, digest.Text, "Old Event")
}

func TestAssembleNoChildrenNotice(t *testing.T) {
	a := testAssembler(nil)

	recipient := Recipient{ID: "parent-2", Language: "en", Status: RecipientActive}
	corpus := []Item{approvedItem(KindEvent, "Some Event", "all")}

	digest, err := a.Assemble(context.Background(), corpus, recipient, 7)
	require.NoError(t, err)

	assert.Empty(t, digest.Sections)
	assert.Contains(t, digest.Text, "Welcome to ParentPath")
	assert.NotContains(t, digest.Text, "Some Event")
}

func TestAssembleNoItemsNotice(t *testing.T) {
	a := testAssembler(nil)

	digest, err := a.Assemble(context.Background(), nil, gradeFiveParent(), 14)
	require.NoError(t, err)

	assert.Empty(t, digest.Sections)
	assert.Contains(t, digest.Text, "No New Updates")
	assert.Contains(t, digest.Text, "past 14 days")
}

func TestAssembleRejectsNonPositiveWindow(t *testing.T) {
	a := testAssembler(nil)

	_, err := a.Assemble(context.Background(), nil, gradeFiveParent(), 0)
	require.Error(t, err)

	_, err = a.Assemble(context.Background(), nil, gradeFiveParent(), -3)
	require.Error(t, err)
}

func TestAssembleGroupingAndOrdering(t *testing.T) {
	a := testAssembler(nil)

	later := approvedItem(KindEvent, "Later Event", "all")
	later.Date = dateAfter(9)
	sooner := approvedItem(KindEvent, "Sooner Event", "all")
	sooner.Date = dateAfter(2)
	undated := approvedItem(KindEvent, "Undated Event", "all")
	slip := approvedItem(KindPermissionSlip, "Trip Form", "all")
	notice := approvedItem(KindAnnouncement, "Newsletter Notice", "all")

	// Corpus order deliberately scrambled.
	corpus := []Item{notice, later, undated, slip, sooner}

	digest, err := a.Assemble(context.Background(), corpus, gradeFiveParent(), 7)
	require.NoError(t, err)

	require.Len(t, digest.Sections, 3)
	assert.Equal(t, KindEvent, digest.Sections[0].Kind)
	assert.Equal(t, KindPermissionSlip, digest.Sections[1].Kind)
	assert.Equal(t, KindAnnouncement, digest.Sections[2].Kind)

	events := digest.Sections[0].Items
	require.Len(t, events, 3)
	assert.Equal(t, "Sooner Event", events[0].Title)
	assert.Equal(t, "Later Event", events[1].Title)
	assert.Equal(t, "Undated Event", events[2].Title)

	// Section headings carry counts in the fixed order.
	eventIdx := strings.Index(digest.Text, "Events (3)")
	slipIdx := strings.Index(digest.Text, "PermissionSlips (1)")
	noticeIdx := strings.Index(digest.Text, "Announcements (1)")
	require.True(t, eventIdx >= 0 && slipIdx >= 0 && noticeIdx >= 0)
	assert.Less(t, eventIdx, slipIdx)
	assert.Less(t, slipIdx, noticeIdx)
}

func TestAssembleRoundTripCount(t *testing.T) {
	a := testAssembler(nil)

	corpus := []Item{
		approvedItem(KindEvent, "Run Day", "all"),
		approvedItem(KindHotLunch, "Pizza Day", "all"),
		approvedItem(KindFundraiser, "Cookie Dough", "grade_5"),
		approvedItem(KindAnnouncement, "Photo Retakes", "all"),
	}

	digest, err := a.Assemble(context.Background(), corpus, gradeFiveParent(), 7)
	require.NoError(t, err)

	// Re-parsing the rendered text must find exactly one bullet per grouped
	// item: nothing dropped, nothing duplicated.
	bullets := strings.Count(digest.Text, "• *")
	assert.Equal(t, digest.ItemCount(), bullets)
	assert.Equal(t, 4, bullets)
	assert.Contains(t, digest.Text, "📊 Total: 4 items")
}

func TestAssembleRendersItemFields(t *testing.T) {
	a := testAssembler(nil)

	item := approvedItem(KindHotLunch, "Pizza Day", "all")
	item.Date = "2026-09-09"
	item.Time = "12:15"
	item.Location = "Multi-purpose room"
	item.Cost = fptr(6.5)
	item.Deadline = "2026-09-05"
	item.Description = strings.Repeat("Two slices and a juice box for every order placed this week. ", 3)
	item.ActionLink = "https://orders.example.com/pizza"

	digest, err := a.Assemble(context.Background(), []Item{item}, gradeFiveParent(), 7)
	require.NoError(t, err)

	assert.Contains(t, digest.Text, "• *Pizza Day*")
	assert.Contains(t, digest.Text, "📆 Sep 09 at 12:15 PM")
	assert.Contains(t, digest.Text, "📍 Multi-purpose room")
	assert.Contains(t, digest.Text, "💵 $6.50")
	assert.Contains(t, digest.Text, "⏰ Due: Sep 05")
	assert.Contains(t, digest.Text, "🔗 https://orders.example.com/pizza")

	// Long descriptions are truncated at 100 characters.
	assert.Contains(t, digest.Text, "...")
	assert.NotContains(t, digest.Text, strings.Repeat("Two slices and a juice box for every order placed this week. ", 3))
}

func TestAssembleOmitsAbsentFields(t *testing.T) {
	a := testAssembler(nil)

	digest, err := a.Assemble(context.Background(), []Item{approvedItem(KindAnnouncement, "Bare Notice", "all")}, gradeFiveParent(), 7)
	require.NoError(t, err)

	assert.Contains(t, digest.Text, "• *Bare Notice*")
	assert.NotContains(t, digest.Text, "📆")
	assert.NotContains(t, digest.Text, "📍")
	assert.NotContains(t, digest.Text, "💵")
	assert.NotContains(t, digest.Text, "⏰")
	assert.NotContains(t, digest.Text, "🔗")
}

func TestAssembleGreetingUsesNamesWithGradeFallback(t *testing.T) {
	a := testAssembler(nil)

	recipient := gradeFiveParent()
	recipient.Children = append(recipient.Children, Child{Grade: 7})

	digest, err := a.Assemble(context.Background(), []Item{approvedItem(KindEvent, "Run Day", "all")}, recipient, 7)
	require.NoError(t, err)

	assert.Contains(t, digest.Text, "Updates for Maya, Grade 7:")
}

func TestAssembleTranslatesNonEnglish(t *testing.T) {
	translator := &stubTranslator{text: "RESUMEN TRADUCIDO"}
	a := testAssembler(translator)

	recipient := gradeFiveParent()
	recipient.Language = "es"

	digest, err := a.Assemble(context.Background(), []Item{approvedItem(KindEvent, "Run Day", "all")}, recipient, 7)
	require.NoError(t, err)

	assert.Equal(t, 1, translator.calls)
	assert.Equal(t, "RESUMEN TRADUCIDO", digest.Text)
}

func TestAssembleEnglishSkipsTranslator(t *testing.T) {
	translator := &stubTranslator{text: "SHOULD NOT APPEAR"}
	a := testAssembler(translator)

	digest, err := a.Assemble(context.Background(), []Item{approvedItem(KindEvent, "Run Day", "all")}, gradeFiveParent(), 7)
	require.NoError(t, err)

	assert.Equal(t, 0, translator.calls)
	assert.Contains(t, digest.Text, "Run Day")
}

func TestAssembleTranslationFailureFallsBack(t *testing.T) {
	corpus := []Item{approvedItem(KindEvent, "Run Day", "all")}

	english, err := testAssembler(nil).Assemble(context.Background(), corpus, gradeFiveParent(), 7)
	require.NoError(t, err)

	recipient := gradeFiveParent()
	recipient.Language = "zh"

	failing := testAssembler(&stubTranslator{err: errors.New("collaborator down")})
	digest, err := failing.Assemble(context.Background(), corpus, recipient, 7)
	require.NoError(t, err)

	// The digest is the untranslated rendering, never empty or error text.
	assert.Equal(t, english.Text, digest.Text)
}

func TestAssembleNilTranslatorDeliversEnglish(t *testing.T) {
	a := testAssembler(nil)

	recipient := gradeFiveParent()
	recipient.Language = "pa"

	digest, err := a.Assemble(context.Background(), []Item{approvedItem(KindEvent, "Run Day", "all")}, recipient, 7)
	require.NoError(t, err)

	assert.Contains(t, digest.Text, "Run Day")
}

func TestAssembleHeaderAndFooter(t *testing.T) {
	a := testAssembler(nil)

	digest, err := a.Assemble(context.Background(), []Item{approvedItem(KindEvent, "Run Day", "all")}, gradeFiveParent(), 7)
	require.NoError(t, err)

	lines := strings.Split(digest.Text, "\n")
	require.Greater(t, len(lines), 4)
	assert.Equal(t, "📬 *Weekly Digest*", lines[0])
	assert.Equal(t, fmt.Sprintf("_%s_", testNow.Format("January 02, 2006")), lines[1])
	assert.Equal(t, "📊 Total: 1 items", lines[len(lines)-1])
}
