// Package messages holds the user-facing Russian texts and button labels.
package messages

import "fmt"

// Reply keyboard button labels. The text router matches these verbatim.
const (
	BtnGuide     = "📖 Справочник"
	BtnTemplates = "📋 Шаблоны ответов"
	BtnAdd       = "➕ Добавить пункт"
	BtnEdit      = "✏️ Редактировать пункт"
	BtnDone      = "Готово"
	BtnCancelCmd = "/cancel"
)

// Inline button labels.
const (
	BtnPrev         = "⬅️ Назад"
	BtnNext         = "Вперёд ➡️"
	BtnDeleteAnswer = "🗑 Удалить"
	BtnAddTemplate  = "➕ Добавить шаблон"
	BtnEditTemplate = "✏️ Редактировать шаблон"
	BtnBackToMenu   = "🚪 Вернуться в меню"
	BtnEditQuestion = "Изменить вопрос"
	BtnEditAnswer   = "Изменить ответ"
	BtnEditPhoto    = "Добавить/изменить фото"
	BtnEditDelete   = "🗑 Удалить пункт"
	BtnCancelEdit   = "🚪 Отмена"
)

// General texts.
const (
	Welcome       = "👋 Добро пожаловать в справочник-бот! Используйте меню для навигации."
	AccessDenied  = "🚫 У вас нет доступа к этому боту."
	Cancelled     = "🚪 Диалог отменён. Выберите действие:"
	BackToMenu    = "🚪 Вернулись в главное меню."
	ChooseItem    = "Выберите нужный пункт"
	Loading       = "⏳ Загрузка..."
	GuideEmpty    = "📖 Справочник пуст. Добавьте первый пункт! ➕"
	TemplateEmpty = "📋 Шаблоны ответов пусты. Добавьте первый шаблон!"
	EntryMissing  = "❌ Пункт не найден!"
	TapToDelete   = "Нажмите, чтобы удалить ответ:"
	SearchEmpty   = "🔍 Ничего не найдено. Попробуйте другое ключевое слово!"
)

// Add flow texts.
const (
	PromptQuestionGuide    = "✏️ Введите вопрос для нового пункта:\n(Напишите /cancel для отмены)"
	PromptQuestionTemplate = "✏️ Введите вопрос для нового шаблона:\n(Напишите /cancel для отмены)"
	PromptAnswer           = "Введите ответ:\n(Напишите /cancel для отмены)"
	PromptAnswerWithFiles  = "Введите ответ (или отправьте фото/альбом с подписью):\n(Напишите /cancel для отмены)"
	AnswerStored           = "✅ Ответ сохранён. Отправьте ещё файлы или нажмите 'Готово':"
	BadDocumentType        = "❌ Поддерживаются только файлы .doc, .docx, .pdf, .xls, .xlsx!"
	DocumentTooBig         = "❌ Файл слишком большой! Максимальный размер — 20 МБ."
	RestartAddGuide        = "❌ Пожалуйста, начните добавление пункта заново."
	RestartAddTemplate     = "❌ Пожалуйста, начните добавление шаблона заново."
	InvalidInput           = "❌ Пожалуйста, отправьте текст или фото/альбом (для ответа/фото)!\n(Напишите /cancel для отмены)"
	GenericError           = "❌ Произошла ошибка. Попробуйте снова или свяжитесь с администратором."
	SyncWarning            = "⚠️ Пункт сохранён, но синхронизация с репозиторием не удалась."
)

// Edit flow texts.
const (
	PromptEditField = "Что изменить?"
	EntryDeleted    = "🗑️ Пункт удалён!"
	TemplateDeleted = "🗑️ Шаблон удалён!"
)

// Stats texts.
const (
	StatsNoActivity = "📊 Статистика за последние 6 часов: нет активности."
	StatsSent       = "📊 Статистика отправлена!"
	StatsDenied     = "❌ Доступ к команде /stats ограничен."
)

// PhotoAdded confirms stored photos and shows the running total.
func PhotoAdded(total int) string {
	return fmt.Sprintf("✅ Фото добавлены (%d). Отправьте ещё файлы, текст или нажмите 'Готово':", total)
}

// DocumentAdded confirms a stored document and shows the running total.
func DocumentAdded(total int) string {
	return fmt.Sprintf("✅ Документ добавлен (%d). Отправьте ещё файлы, текст или нажмите 'Готово':", total)
}

// TooManyFiles reports the album cap.
func TooManyFiles(limit int) string {
	return fmt.Sprintf("❌ Максимум %d файлов (фото или документы) на пункт! Отправьте ещё файлы, текст или нажмите 'Готово':", limit)
}

// EntrySaved confirms the committed entry.
func EntrySaved(isGuide bool, question string) string {
	noun := "Пункт"
	if !isGuide {
		noun = "Шаблон"
	}
	return fmt.Sprintf("➕ %s добавлен!\nВопрос: %s", noun, question)
}

// EntryText renders the shown question and answer.
func EntryText(question, answer string) string {
	if answer == "" {
		answer = "Отсутствует"
	}
	return fmt.Sprintf("📄 Вопрос: %s\nОтвет:\n%s", question, answer)
}

// FieldChanged confirms an edited field.
func FieldChanged(field string) string {
	return fmt.Sprintf("✅ %s успешно изменён!", field)
}

// PromptEditValue shows the current value and asks for the new one.
func PromptEditValue(current, field string) string {
	return fmt.Sprintf("%s✏️ Введите новый %s:\n(Напишите /cancel для отмены)", current, field)
}

// Instruction is the /instruction help text.
const Instruction = `📜 Инструкция по использованию бота:

1. 📖 Справочник:
   - Выберите эту кнопку, чтобы просмотреть вопросы и ответы.
   - Используйте кнопки пагинации (⬅️ Назад / Вперёд ➡️) для навигации.
   - Нажмите на вопрос, чтобы увидеть ответ. Ответы автоматически удаляются через 30 минут.
   - Для поиска введите ключевое слово в чат, и бот покажет подходящие вопросы.

2. 📋 Шаблоны ответов:
   - Просматривайте готовые шаблоны для быстрых ответов.
   - Выберите шаблон, чтобы скопировать его текст или просмотреть вложения.

3. ➕ Добавить пункт:
   - Добавляйте новые вопросы и ответы в справочник.
   - Введите вопрос, затем ответ. Можно прикрепить фото или документы (.doc, .docx, .pdf, .xls, .xlsx, до 20 МБ).
   - Нажмите 'Готово', чтобы сохранить, или /cancel для отмены.

4. ✏️ Редактировать пункт:
   - Выберите вопрос для редактирования.
   - Изменяйте вопрос, ответ, фото или удаляйте пункт.
   - Следуйте подсказкам и завершайте редактирование или отменяйте через /cancel.

5. 📜 Инструкция:
   - Вы здесь! Эта команда показывает, как пользоваться ботом.

6. Дополнительно:
   - Для поиска просто введите ключевое слово в чат.
   - Используйте /cancel в любой момент, чтобы отменить текущую операцию.
   - Если возникла ошибка, бот уведомит вас, и вы сможете начать заново.

Если что-то не работает, свяжитесь с администратором. Удачи! 🚀`
