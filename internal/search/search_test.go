package search

import (
	"testing"

	"github.com/m3rciful/refbot/internal/catalog"
)

func TestFindMatchesInflectedForms(t *testing.T) {
	entries := []catalog.Entry{
		{ID: 1, Question: "Не работает принтер", Answer: "Перезагрузить"},
		{ID: 2, Question: "Сканер завис", Answer: "Выключить питание"},
		{ID: 3, Question: "Замятие бумаги", Answer: "Открыть крышку принтера"},
	}

	got := Find(entries, "принтера")
	if len(got) != 2 || got[0].ID != 1 || got[1].ID != 3 {
		t.Fatalf("Find(принтера) = %+v", got)
	}
}

func TestFindCaseInsensitive(t *testing.T) {
	entries := []catalog.Entry{{ID: 1, Question: "VPN не подключается", Answer: ""}}
	if got := Find(entries, "vpn"); len(got) != 1 {
		t.Fatalf("Find(vpn) = %+v", got)
	}
	if got := Find(entries, "VPN"); len(got) != 1 {
		t.Fatalf("Find(VPN) = %+v", got)
	}
}

func TestFindAnswerText(t *testing.T) {
	entries := []catalog.Entry{{ID: 1, Question: "Ошибка печати", Answer: "Проверить драйвер"}}
	if got := Find(entries, "драйвер"); len(got) != 1 {
		t.Fatalf("Find(драйвер) = %+v", got)
	}
}

func TestFindNoResults(t *testing.T) {
	entries := []catalog.Entry{{ID: 1, Question: "Ошибка печати", Answer: ""}}
	if got := Find(entries, "монитор"); got != nil {
		t.Fatalf("Find(монитор) = %+v, want nil", got)
	}
	if got := Find(entries, "   "); got != nil {
		t.Fatalf("blank keyword must match nothing")
	}
}

func TestStemShortWordsUntouched(t *testing.T) {
	if stem("кот") != "кот" {
		t.Fatalf("short word must not be stemmed")
	}
	if stem("принтеры") != stem("принтера") {
		t.Fatalf("forms of one word must share a stem")
	}
}
