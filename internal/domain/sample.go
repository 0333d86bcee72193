package domain

// SampleProperties is the demo portfolio seeded into an empty store.
func SampleProperties() []Property {
	return []Property{
		{
			ID:           "1",
			Title:        "Cobertura Duplex nos Jardins",
			Description:  "Cobertura com vista panorâmica, piscina privativa e acabamento de alto padrão.",
			Price:        NewMoney(4500000),
			Type:         TypeApartment,
			Status:       StatusAvailable,
			Address:      "Rua Oscar Freire, São Paulo, SP",
			ConsumerUnit: "84930211",
			Bedrooms:     4,
			Bathrooms:    5,
			Area:         320,
			ImageURL:     "https://picsum.photos/800/600?random=1",
			Features:     []string{"Piscina", "Varanda Gourmet", "Portaria 24h"},
		},
		{
			ID:           "2",
			Title:        "Casa de Praia em Ubatuba",
			Description:  "Casa pé na areia para temporada, com jardim e churrasqueira.",
			Price:        NewMoney(1800000),
			Type:         TypeHouse,
			Status:       StatusRented,
			Address:      "Praia do Lázaro, Ubatuba, SP",
			ConsumerUnit: "10293844",
			Bedrooms:     3,
			Bathrooms:    3,
			Area:         210,
			ImageURL:     "https://picsum.photos/800/600?random=2",
			Features:     []string{"Jardim", "Churrasqueira", "Vista para o mar"},
			RentalHistory: []FinancialRecord{
				{Date: "15/04/2024", CheckIn: "12/04/2024", CheckOut: "15/04/2024", Amount: NewMoney(1500), Description: "Diária Airbnb", Kind: KindRevenue},
				{Date: "22/04/2024", CheckIn: "19/04/2024", CheckOut: "22/04/2024", Amount: NewMoney(1650), Description: "Diária Airbnb", Kind: KindRevenue},
				{Date: "20/04/2024", Amount: NewMoney(350), Description: "Manutenção do jardim", Kind: KindExpense},
			},
		},
		{
			ID:           "3",
			Title:        "Studio Compacto no Centro",
			Description:  "Studio mobiliado próximo ao metrô, ideal para investimento.",
			Price:        NewMoney(450000),
			Type:         TypeApartment,
			Status:       StatusRented,
			Address:      "Av. Ipiranga, São Paulo, SP",
			ConsumerUnit: "55443322",
			Bedrooms:     1,
			Bathrooms:    1,
			Area:         35,
			ImageURL:     "https://picsum.photos/800/600?random=3",
			Features:     []string{"Mobiliado", "Lavanderia coletiva"},
			RentalHistory: []FinancialRecord{
				{Date: "01/05/2024", CheckIn: "01/05/2024", CheckOut: "31/05/2024", Amount: NewMoney(2500), Description: "Aluguel mensal", Kind: KindRevenue},
				{Date: "01/04/2024", CheckIn: "01/04/2024", CheckOut: "30/04/2024", Amount: NewMoney(2500), Description: "Aluguel mensal", Kind: KindRevenue},
				{Date: "10/04/2024", Amount: NewMoney(120), Description: "Reparo do chuveiro", Kind: KindExpense},
			},
		},
		{
			ID:           "4",
			Title:        "Sala Comercial na Faria Lima",
			Description:  "Laje corporativa em edifício triple A.",
			Price:        NewMoney(1200000),
			Type:         TypeCommercial,
			Status:       StatusAvailable,
			Address:      "Av. Faria Lima, São Paulo, SP",
			ConsumerUnit: "99887766",
			Bedrooms:     0,
			Bathrooms:    2,
			Area:         120,
			ImageURL:     "https://picsum.photos/800/600?random=4",
			Features:     []string{"Ar central", "Heliponto"},
		},
	}
}
