package service

// Services bundles every service the handlers depend on.
type Services struct {
	SheetsClient    *SheetsClient
	CalendarClient  *CalendarClient
	DiscordNotifier *DiscordNotifier
	Clinic          *Clinic
}
