package domain

// LeadStatus tracks a prospective client through the sales funnel.
type LeadStatus string

const (
	LeadNew       LeadStatus = "Novo"
	LeadContacted LeadStatus = "Contatado"
	LeadVisit     LeadStatus = "Visita Agendada"
	LeadClosed    LeadStatus = "Fechado"
)

// Lead is a prospective client. Leads are read-only demo data.
type Lead struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Email    string     `json:"email"`
	Phone    string     `json:"phone"`
	Interest string     `json:"interest"`
	Status   LeadStatus `json:"status"`
	Date     string     `json:"date"` // YYYY-MM-DD
}

// SampleLeads returns the demo client list.
func SampleLeads() []Lead {
	return []Lead{
		{ID: "1", Name: "Roberto Silva", Email: "roberto@email.com", Phone: "(11) 99999-1234", Interest: "Compra - Apto Jardins", Status: LeadNew, Date: "2024-05-10"},
		{ID: "2", Name: "Ana Oliveira", Email: "ana@email.com", Phone: "(11) 98888-5678", Interest: "Aluguel - Studio", Status: LeadVisit, Date: "2024-05-09"},
		{ID: "3", Name: "Carlos Santos", Email: "carlos@email.com", Phone: "(11) 97777-4321", Interest: "Compra - Casa", Status: LeadContacted, Date: "2024-05-08"},
		{ID: "4", Name: "Fernanda Lima", Email: "fernanda@email.com", Phone: "(11) 96666-8765", Interest: "Investimento", Status: LeadClosed, Date: "2024-05-01"},
	}
}
