package extract_test

import (
	"reflect"
	"testing"

	"sheetwatch/internal/extract"
)

func TestFencedBlock(t *testing.T) {
	cases := []struct {
		name  string
		reply string
		want  string
	}{
		{
			name:  "json fence",
			reply: "Here you go:\n```json\n{\"a\": 1}\n```\nanything after",
			want:  `{"a": 1}`,
		},
		{
			name:  "bare fence",
			reply: "```\n{\"a\": 1}\n```",
			want:  `{"a": 1}`,
		},
		{
			name:  "no fence returns trimmed whole",
			reply: "  {\"a\": 1}  ",
			want:  `{"a": 1}`,
		},
		{
			name:  "unterminated fence",
			reply: "```python\nprint('x')",
			want:  "print('x')",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := extract.FencedBlock(tc.reply); got != tc.want {
				t.Fatalf("FencedBlock = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestTagsDecodesFencedEntryList(t *testing.T) {
	reply := "```json\n[{\"Name\": \"Model\", \"Description\": \"LM317T\"}, {\"Name\": \"Package\", \"Description\": \"TO-220\"}]\n```"
	result := extract.Tags(reply)
	if result.Raw != "" {
		t.Fatalf("unexpected raw fallback: %q", result.Raw)
	}
	want := map[string]string{"Model": "LM317T", "Package": "TO-220"}
	if !reflect.DeepEqual(result.Tags, want) {
		t.Fatalf("tags = %v, want %v", result.Tags, want)
	}
}

func TestTagsNormalizesSingleQuotes(t *testing.T) {
	result := extract.Tags("[{'Name': 'Model', 'Description': 'NE555'}]")
	if result.Tags["Model"] != "NE555" {
		t.Fatalf("tags = %+v", result)
	}
}

func TestTagsSkipsMalformedEntries(t *testing.T) {
	reply := `[{"Name": "Model", "Description": "LM317T"}, {"Description": "no name"}, {"Name": "", "Description": "blank"}]`
	result := extract.Tags(reply)
	if len(result.Tags) != 1 || result.Tags["Model"] != "LM317T" {
		t.Fatalf("tags = %+v", result)
	}
}

func TestTagsAcceptsFlatObject(t *testing.T) {
	result := extract.Tags(`{"Type": "Regulator", "Pins": 3}`)
	if result.Tags["Type"] != "Regulator" || result.Tags["Pins"] != "3" {
		t.Fatalf("tags = %+v", result)
	}
}

func TestTagsStringifiesStructuredDescriptions(t *testing.T) {
	result := extract.Tags(`[{"Name": "OutputRange", "Description": {"min": "1.2V", "max": "37V"}}]`)
	if result.Tags["OutputRange"] != `{"max":"37V","min":"1.2V"}` {
		t.Fatalf("tags = %+v", result)
	}
}

func TestTagsKeepsRawOnFailure(t *testing.T) {
	reply := "The tags are Type=Regulator"
	result := extract.Tags(reply)
	if result.Tags != nil {
		t.Fatalf("expected no tags, got %v", result.Tags)
	}
	if result.Raw != reply {
		t.Fatalf("raw = %q", result.Raw)
	}
}

func TestChecklistDecodesStringArray(t *testing.T) {
	reply := "```json\n[\"Check pin 1\", \"Check pin 2\"]\n```"
	items := extract.Checklist(reply)
	if !reflect.DeepEqual(items, []string{"Check pin 1", "Check pin 2"}) {
		t.Fatalf("items = %v", items)
	}
}

func TestChecklistDecodesObjectArray(t *testing.T) {
	reply := `[{"text": "Check pin 1"}, {"step": "Check pin 2"}, {"other": true}]`
	items := extract.Checklist(reply)
	if !reflect.DeepEqual(items, []string{"Check pin 1", "Check pin 2"}) {
		t.Fatalf("items = %v", items)
	}
}

func TestChecklistSingleQuoted(t *testing.T) {
	items := extract.Checklist("['Check pin 1', 'Check pin 2']")
	if len(items) != 2 {
		t.Fatalf("items = %v", items)
	}
}

func TestChecklistEmptyOnFailure(t *testing.T) {
	if items := extract.Checklist("no list here"); items != nil {
		t.Fatalf("expected nil, got %v", items)
	}
	if items := extract.Checklist(`["", "  "]`); items != nil {
		t.Fatalf("expected nil for blank items, got %v", items)
	}
}
