package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"
	"unicode/utf8"
)

// kindOrder fixes the section ordering inside a digest.
var kindOrder = []ItemKind{
	KindEvent,
	KindPermissionSlip,
	KindFundraiser,
	KindHotLunch,
	KindAnnouncement,
}

// kindEmojis decorate section headings in the rendered message.
var kindEmojis = map[ItemKind]string{
	KindEvent:          "📅",
	KindPermissionSlip: "📝",
	KindFundraiser:     "💰",
	KindHotLunch:       "🍕",
	KindAnnouncement:   "📢",
}

const defaultKindEmoji = "📌"

// descriptionLimit caps rendered descriptions at this many characters.
const descriptionLimit = 100

// Assembler builds a personalized digest for one recipient from a corpus of
// approved items. Translation is a best-effort enrichment, never a hard
// dependency: any translator failure degrades to the English rendering.
type Assembler struct {
	Translator Translator
	Logger     *slog.Logger
	// Now supplies the assembly clock; defaults to time.Now.
	Now func() time.Time
}

// NewAssembler constructs an Assembler. The translator may be nil, in which
// case every digest is delivered untranslated.
func NewAssembler(translator Translator, logger *slog.Logger) Assembler {
	if logger == nil {
		logger = slog.Default()
	}
	return Assembler{Translator: translator, Logger: logger, Now: time.Now}
}

// Assemble filters, groups, and renders the digest for one recipient.
// windowDays must be positive; a non-positive window is caller misuse, not a
// data-quality condition, and is rejected outright.
func (a Assembler) Assemble(ctx context.Context, corpus []Item, recipient Recipient, windowDays int) (Digest, error) {
	if windowDays <= 0 {
		return Digest{}, fmt.Errorf("pipeline: windowDays must be positive, got %d", windowDays)
	}

	if len(recipient.Children) == 0 {
		return Digest{Text: noChildrenNotice}, nil
	}

	selected := a.selectItems(corpus, recipient, windowDays)
	if len(selected) == 0 {
		return Digest{Text: noItemsNotice(windowDays)}, nil
	}

	sections := groupByKind(selected)
	text := a.render(recipient, sections)

	if recipient.Language != "" && recipient.Language != "en" {
		text = a.translate(ctx, text, recipient.Language)
	}

	return Digest{Sections: sections, Text: text}, nil
}

// selectItems keeps approved items created inside the window whose audience
// tags overlap the recipient's filter set. Overlap is set membership, never
// substring matching.
func (a Assembler) selectItems(corpus []Item, recipient Recipient, windowDays int) []Item {
	filter := audienceFilter(recipient)
	cutoff := a.now().AddDate(0, 0, -windowDays)

	var selected []Item
	for _, item := range corpus {
		if item.Status != StatusApproved {
			continue
		}
		if item.CreatedAt.Before(cutoff) {
			continue
		}
		if !tagsOverlap(item.AudienceTags, filter) {
			continue
		}
		selected = append(selected, item)
	}
	return selected
}

// audienceFilter builds the tag set a recipient matches against: one
// grade_<n> tag per child, every subscribed activity, and the catch-all.
func audienceFilter(recipient Recipient) map[string]struct{} {
	filter := make(map[string]struct{}, len(recipient.Children)+len(recipient.Activities)+1)
	for _, child := range recipient.Children {
		filter[fmt.Sprintf("grade_%d", child.Grade)] = struct{}{}
	}
	for _, activity := range recipient.Activities {
		filter[activity] = struct{}{}
	}
	filter["all"] = struct{}{}
	return filter
}

func tagsOverlap(tags []string, filter map[string]struct{}) bool {
	for _, tag := range tags {
		if _, ok := filter[tag]; ok {
			return true
		}
	}
	return false
}

// groupByKind buckets items into sections in the fixed render order. Kinds
// outside the known ordering land at the end in first-seen order so nothing
// selected is ever dropped. Within a section items sort by ascending date,
// undated items last, otherwise stable.
func groupByKind(items []Item) []Section {
	grouped := make(map[ItemKind][]Item)
	var extraKinds []ItemKind
	for _, item := range items {
		if _, ok := grouped[item.Kind]; !ok && !isOrderedKind(item.Kind) {
			extraKinds = append(extraKinds, item.Kind)
		}
		grouped[item.Kind] = append(grouped[item.Kind], item)
	}

	var sections []Section
	for _, kind := range append(append([]ItemKind{}, kindOrder...), extraKinds...) {
		bucket, ok := grouped[kind]
		if !ok {
			continue
		}
		sort.SliceStable(bucket, func(i, j int) bool {
			di, iOK := itemDate(bucket[i])
			dj, jOK := itemDate(bucket[j])
			if iOK != jOK {
				return iOK
			}
			if !iOK {
				return false
			}
			return di.Before(dj)
		})
		sections = append(sections, Section{Kind: kind, Items: bucket})
	}
	return sections
}

func isOrderedKind(kind ItemKind) bool {
	for _, k := range kindOrder {
		if k == kind {
			return true
		}
	}
	return false
}

func itemDate(item Item) (time.Time, bool) {
	if item.Date == "" {
		return time.Time{}, false
	}
	ts, err := parseDate(item.Date)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}

// render produces the markdown-lite WhatsApp-style message body.
func (a Assembler) render(recipient Recipient, sections []Section) string {
	var lines []string

	lines = append(lines, "📬 *Weekly Digest*")
	lines = append(lines, fmt.Sprintf("_%s_", a.now().Format("January 02, 2006")))
	lines = append(lines, "")
	lines = append(lines, greeting(recipient))
	lines = append(lines, "")

	total := 0
	for _, section := range sections {
		emoji, ok := kindEmojis[section.Kind]
		if !ok {
			emoji = defaultKindEmoji
		}
		lines = append(lines, fmt.Sprintf("*%s %ss (%d)*", emoji, section.Kind, len(section.Items)))
		lines = append(lines, "")
		for _, item := range section.Items {
			lines = append(lines, renderItem(item))
			lines = append(lines, "")
			total++
		}
	}

	lines = append(lines, "---")
	lines = append(lines, fmt.Sprintf("📊 Total: %d items", total))

	return strings.Join(lines, "\n")
}

func greeting(recipient Recipient) string {
	names := make([]string, 0, len(recipient.Children))
	for _, child := range recipient.Children {
		name := child.Name
		if name == "" {
			name = fmt.Sprintf("Grade %d", child.Grade)
		}
		names = append(names, name)
	}
	return fmt.Sprintf("Updates for %s:", strings.Join(names, ", "))
}

// renderItem formats one item, one field per line, omitting absent fields.
func renderItem(item Item) string {
	parts := []string{fmt.Sprintf("• *%s*", item.Title)}

	if ts, ok := itemDate(item); ok {
		if clock, err := time.Parse("15:04", item.Time); err == nil && item.Time != "" {
			parts = append(parts, fmt.Sprintf("  📆 %s at %s", ts.Format("Jan 02"), clock.Format("03:04 PM")))
		} else {
			parts = append(parts, fmt.Sprintf("  📆 %s", ts.Format("Jan 02")))
		}
	}

	if item.Location != "" {
		parts = append(parts, fmt.Sprintf("  📍 %s", item.Location))
	}
	if item.Cost != nil {
		parts = append(parts, fmt.Sprintf("  💵 $%.2f", *item.Cost))
	}
	if item.Deadline != "" {
		if due, err := parseDate(item.Deadline); err == nil {
			parts = append(parts, fmt.Sprintf("  ⏰ Due: %s", due.Format("Jan 02")))
		}
	}
	if item.Description != "" {
		parts = append(parts, "  "+truncate(item.Description, descriptionLimit))
	}
	if item.ActionLink != "" {
		parts = append(parts, fmt.Sprintf("  🔗 %s", item.ActionLink))
	}

	return strings.Join(parts, "\n")
}

func truncate(text string, limit int) string {
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	runes := []rune(text)
	return string(runes[:limit]) + "..."
}

// translate hands the rendered text to the collaborator, degrading silently
// to the untranslated text when the collaborator is missing or fails.
func (a Assembler) translate(ctx context.Context, text, languageCode string) string {
	if a.Translator == nil {
		return text
	}
	translated, err := a.Translator.Translate(ctx, text, languageCode)
	if err != nil {
		a.logger().Warn("digest translation failed, delivering untranslated",
			"language", languageCode, "error", err)
		return text
	}
	return translated
}

func (a Assembler) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

func (a Assembler) logger() *slog.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return slog.Default()
}

const noChildrenNotice = "👋 Welcome to ParentPath!\n\n" +
	"It looks like you haven't added any children yet. " +
	"Reply with your child's grade to get started.\n\n" +
	"Example: 'Grade 5'"

func noItemsNotice(windowDays int) string {
	return fmt.Sprintf("📭 *No New Updates*\n\n"+
		"No items in the past %d days matching your "+
		"children's grades or activities.\n\n"+
		"Check back soon!", windowDays)
}

// errorNotice is what a recipient sees when their digest generation fails.
// Raw errors never reach parents.
const errorNotice = "⚠️ *Digest Unavailable*\n\n" +
	"We encountered an error generating your digest. " +
	"Please contact support if this persists."
