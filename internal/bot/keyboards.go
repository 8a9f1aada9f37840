package bot

// Callback payloads for the inline keyboards.
const (
	cbCreateInvoice  = "create_table"
	cbRegisterClient = "register_client"
	cbSearchClient   = "search_client"
	cbMyInvoices     = "my_invoices"
	cbSheetToPDF     = "sheet_to_pdf"
	cbCancel         = "cancel"
)

// MainKeyboard returns the top-level action keyboard shown when no flow is
// in progress.
func MainKeyboard() Keyboard {
	return Keyboard{
		{
			{Label: "Создать счет-фактуру", Data: cbCreateInvoice},
			{Label: "Регистрация клиента", Data: cbRegisterClient},
		},
		{
			{Label: "Поиск клиента", Data: cbSearchClient},
			{Label: "Мои счет-фактуры", Data: cbMyInvoices},
		},
		{
			{Label: "Счет-фактура в PDF", Data: cbSheetToPDF},
		},
	}
}

// CancelKeyboard returns the single-button keyboard shown while a flow is
// collecting input.
func CancelKeyboard() Keyboard {
	return Keyboard{
		{{Label: "Отмена", Data: cbCancel}},
	}
}
