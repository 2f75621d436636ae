// Package render produces the order document artifact (PDF). Rendering is
// local and deterministic for a given order view and clock: no network I/O,
// and a missing optional field can never fail it.
package render

import (
	"fmt"
	"time"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/tallerapp/notifier/internal/domain"
	"github.com/tallerapp/notifier/internal/template"
)

// PDF renders the fixed-layout service order document.
type PDF struct {
	company domain.CompanyProfile
	loc     *time.Location

	// now is swappable so tests can pin the generation timestamp.
	now func() time.Time
}

func NewPDF(company domain.CompanyProfile, loc *time.Location) *PDF {
	return &PDF{company: company, loc: loc, now: time.Now}
}

// Render produces the PDF for one order view. Optional fields have already
// been resolved through the shared fallback rule by BuildContext, so the
// document can never contain a raw missing-value token.
func (p *PDF) Render(v *domain.OrderView) ([]byte, error) {
	tc := template.BuildContext(v, p.company, p.loc)

	m := maroto.New()

	generated := template.FormatDateTime(p.now(), p.loc)
	if err := m.RegisterFooter(
		row.New(12).Add(
			col.New(12).Add(
				text.New("Documento generado automáticamente, válido sin firma. "+
					"Conserve este comprobante para la recogida del vehículo.", props.Text{Size: 7}),
				text.New("Generado: "+generated, props.Text{Size: 7, Top: 5}),
			),
		),
	); err != nil {
		return nil, fmt.Errorf("register footer: %w", err)
	}

	// Header: company identity, document title, order id.
	m.AddRows(
		row.New(10).Add(
			col.New(12).Add(
				text.New(p.company.Name, props.Text{
					Align: align.Center,
					Size:  16,
					Style: fontstyle.Bold,
				}),
			),
		),
		row.New(6).Add(
			col.New(12).Add(
				text.New(p.company.Address+" | Tel: "+p.company.Phone, props.Text{
					Align: align.Center,
					Size:  9,
				}),
			),
		),
		row.New(12).Add(
			col.New(12).Add(
				text.New(fmt.Sprintf("ORDEN DE SERVICIO #%d", tc.OrderID), props.Text{
					Align: align.Center,
					Size:  13,
					Style: fontstyle.Bold,
					Top:   4,
				}),
			),
		),
		row.New(6).Add(
			col.New(12).Add(
				text.New("Recibida: "+tc.ReceivedAt, props.Text{Align: align.Center, Size: 9}),
			),
		),
	)

	m.AddRows(section("CLIENTE", [][2]string{
		{"Nombre", tc.ClientFullName},
		{"Documento", tc.ClientTaxID},
		{"Teléfono", tc.ClientPhone},
		{"Correo", tc.ClientEmail},
	})...)

	m.AddRows(section("VEHÍCULO", [][2]string{
		{"Matrícula", tc.VehiclePlate},
		{"Marca", tc.VehicleMake},
		{"Modelo", tc.VehicleModel},
		{"Año", tc.VehicleYear},
		{"Color", tc.VehicleColor},
	})...)

	m.AddRows(section("SERVICIO", [][2]string{
		{"Servicio", tc.ServiceName},
		{"Descripción", tc.ServiceDescription},
		{"Estado actual", tc.StateName},
	})...)

	// Free-text sections only appear when non-empty.
	if tc.ClientComment != "" {
		m.AddRows(freeText("COMENTARIO DEL CLIENTE", tc.ClientComment)...)
	}
	if tc.Observations != "" {
		m.AddRows(freeText("OBSERVACIONES DEL TALLER", tc.Observations)...)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate pdf: %w", err)
	}
	return doc.GetBytes(), nil
}

// section lays out a titled block of label/value pairs. The title shares its
// row with the first pair, so an automatic page break between rows can never
// leave a section header orphaned at the bottom of a page.
func section(title string, pairs [][2]string) []core.Row {
	rows := make([]core.Row, 0, len(pairs))

	first := pairs[0]
	rows = append(rows, row.New(15).Add(
		col.New(4).Add(
			text.New(title, props.Text{Size: 11, Style: fontstyle.Bold, Top: 2}),
			text.New(first[0], props.Text{Size: 9, Style: fontstyle.Bold, Top: 9}),
		),
		col.New(8).Add(
			text.New(first[1], props.Text{Size: 9, Top: 9}),
		),
	))

	for _, pair := range pairs[1:] {
		rows = append(rows, row.New(6).Add(
			col.New(4).Add(text.New(pair[0], props.Text{Size: 9, Style: fontstyle.Bold})),
			col.New(8).Add(text.New(pair[1], props.Text{Size: 9})),
		))
	}
	return rows
}

// freeText lays out a titled free-text block, title bound to the first line
// of content for the same page-break reason as section.
func freeText(title, content string) []core.Row {
	return []core.Row{
		row.New(24).Add(
			col.New(12).Add(
				text.New(title, props.Text{Size: 11, Style: fontstyle.Bold, Top: 2}),
				text.New(content, props.Text{Size: 9, Top: 9}),
			),
		),
	}
}
