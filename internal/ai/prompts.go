package ai

const describePrompt = `Atue como um redator especialista em marketing imobiliário de luxo.
Crie uma descrição atraente, profissional e persuasiva para um imóvel com as seguintes características:
- Tipo: %s
- Localização: %s
- Quartos: %d
- Características e Diferenciais: %s

A descrição deve ter cerca de 2 parágrafos, focando nos benefícios e estilo de vida. Use formatação Markdown se necessário, mas mantenha simples.
Retorne APENAS a descrição, sem introduções.`

const extractPrompt = `Analise este documento financeiro/extrato.
Identifique todas as movimentações de valores: diárias, aluguéis ou pagamentos recebidos, e também despesas pagas (manutenção, contas, taxas).

Extraia:
1. A data da transação (formato DD/MM/YYYY)
2. O valor monetário (número positivo)
3. Uma breve descrição (ex: "Diária Airbnb", "Pagamento Aluguel")
4. O tipo: "revenue" para entradas, "expense" para saídas
5. Se for uma hospedagem, as datas de check-in e check-out (formato DD/MM/YYYY), senão omita

Retorne APENAS um JSON array puro, sem markdown, no formato:
[
  { "date": "string", "amount": number, "description": "string", "type": "revenue", "checkIn": "string", "checkOut": "string" }
]

Se não encontrar nada, retorne [].`

const imagesPrompt = `Transform the following search query: "%s" into 4 DISTINCT, SHORT, VISUAL keywords in English.
Keep each string under 6 words.
Focus on architecture, interior design, and realism.

Example Input: "Apartamento luxo jardins"
Example Output: [
  "luxury modern apartment living room interior",
  "modern building facade glass architecture",
  "cozy bedroom apartment city view",
  "luxury kitchen marble countertop interior"
]

Return ONLY the JSON array of strings.`

const chatInstruction = `Você é o "Corretor AI", um assistente virtual inteligente do sistema ImobControl AI.
Seu objetivo é ajudar corretores de imóveis a gerenciar seu portfólio e responder perguntas sobre os imóveis cadastrados.

DADOS DO PORTFÓLIO ATUAL (Use isso para responder perguntas específicas):
%s

DIRETRIZES:
1. Seja profissional, prestativo e direto.
2. Se o usuário perguntar sobre preços, calcule médias ou totais se solicitado.
3. Se perguntarem sobre um imóvel específico, use os detalhes fornecidos.
4. Se a pergunta não for sobre imóveis, tente ajudar de forma geral sobre o mercado imobiliário.
5. Responda sempre em Português do Brasil.`
