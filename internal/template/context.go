package template

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/tallerapp/notifier/internal/domain"
)

var spanishMonths = [...]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

// FormatDateTime renders a timestamp in the fixed human locale used across
// all output ("2 de enero de 2006, 15:04"), never the host's default.
func FormatDateTime(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return domain.NotSpecified
	}
	t = t.In(loc)
	return fmt.Sprintf("%d de %s de %d, %02d:%02d",
		t.Day(), spanishMonths[t.Month()-1], t.Year(), t.Hour(), t.Minute())
}

// BuildContext flattens an OrderView and the CompanyProfile into the
// fully-resolved TemplateContext. Every optional field is substituted here,
// in one place, so neither the PDF nor any message template can ever see an
// unresolved value.
func BuildContext(v *domain.OrderView, company domain.CompanyProfile, loc *time.Location) domain.TemplateContext {
	fullName := strings.TrimSpace(domain.OrEmpty(v.ClientName) + " " + domain.OrEmpty(v.ClientSurname))
	if fullName == "" {
		fullName = domain.NotSpecified
	}

	year := domain.NotSpecified
	if v.VehicleYear != nil {
		year = strconv.Itoa(*v.VehicleYear)
	}

	return domain.TemplateContext{
		OrderID:    v.OrderID,
		ReceivedAt: FormatDateTime(v.ReceivedAt, loc),

		ClientFullName: fullName,
		ClientTaxID:    domain.OrDefault(v.ClientTaxID),
		ClientPhone:    domain.OrDefault(v.ClientPhone),
		ClientEmail:    domain.OrDefault(v.ClientEmail),

		VehiclePlate: domain.OrDefault(v.VehiclePlate),
		VehicleMake:  domain.OrDefault(v.VehicleMake),
		VehicleModel: domain.OrDefault(v.VehicleModel),
		VehicleYear:  year,
		VehicleColor: domain.OrDefault(v.VehicleColor),

		ServiceName:        domain.OrDefault(v.ServiceName),
		ServiceDescription: domain.OrDefault(v.ServiceDescription),
		StateName:          domain.OrDefault(v.StateName),

		ClientComment: strings.TrimSpace(domain.OrEmpty(v.ClientComment)),
		Observations:  strings.TrimSpace(domain.OrEmpty(v.Observations)),

		CompanyName:    company.Name,
		CompanyPhone:   company.Phone,
		CompanyEmail:   company.Email,
		CompanyAddress: company.Address,
	}
}
