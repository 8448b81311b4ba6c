package usecases

import (
	"time"

	"cloudinbox/internal/entities"
)

// Fixed sample conversations shown when the row source fails or is empty,
// so the inbox is never blank during development and demos. Timestamps
// are relative so the list always looks fresh.
func MockConversations() []entities.Conversation {
	now := time.Now()

	laura := entities.Participant{ID: "agent-1", Name: "Laura Jiménez", Handle: "laura"}
	carlos := entities.Participant{ID: "agent-2", Name: "Carlos Pérez", Handle: "carlos"}
	maria := entities.Participant{ID: "customer-1", Name: "María Rodríguez", Handle: "@maria"}
	juan := entities.Participant{ID: "customer-2", Name: "Juan Ortega", Handle: "@juan"}
	luisa := entities.Participant{ID: "customer-3", Name: "Luisa Fernández", Handle: "@luisa"}

	return []entities.Conversation{
		{
			ID:                 "conv-1",
			Subject:            "Problemas con la entrega",
			Participants:       []entities.Participant{maria, laura},
			LastMessagePreview: "¿Cuándo llegará mi pedido?",
			LastMessageAt:      now.Add(-12 * time.Minute),
			UpdatedAt:          now.Add(-12 * time.Minute),
			UnreadCount:        2,
			Priority:           entities.PriorityHigh,
			Status:             entities.ConversationOpen,
			Tags:               []string{"envíos", "vip"},
			Channel:            ChannelWhatsApp,
			AssignedTo:         &laura,
			Messages: []entities.Message{
				mockMessage("msg-1", "conv-1", maria.ID, "customer", "Hola, hice un pedido ayer y aún no tengo novedades.", ChannelWhatsApp, now.Add(-2*time.Hour), entities.DeliveryRead),
				mockMessage("msg-2", "conv-1", laura.ID, "agent", "Hola María, ya consulto con logística y te confirmo.", ChannelWhatsApp, now.Add(-50*time.Minute), entities.DeliveryRead),
				mockMessage("msg-3", "conv-1", maria.ID, "customer", "Gracias, quedo atenta.", ChannelWhatsApp, now.Add(-12*time.Minute), entities.DeliveryDelivered),
			},
		},
		{
			ID:                 "conv-2",
			Subject:            "Solicitud de factura",
			Participants:       []entities.Participant{juan, carlos},
			LastMessagePreview: "Te paso la factura en PDF",
			LastMessageAt:      now.Add(-5 * time.Minute),
			UpdatedAt:          now.Add(-5 * time.Minute),
			Priority:           entities.PriorityNormal,
			Status:             entities.ConversationPending,
			Tags:               []string{"facturación"},
			Channel:            "email",
			AssignedTo:         &carlos,
			Messages: []entities.Message{
				mockMessage("msg-4", "conv-2", juan.ID, "customer", "Buen día, necesito la factura de la compra #4532.", "email", now.Add(-4*time.Hour), entities.DeliveryRead),
				mockMessage("msg-5", "conv-2", carlos.ID, "agent", "Hola Juan, aquí tienes la factura en PDF adjunta.", "email", now.Add(-5*time.Minute), entities.DeliveryRead),
			},
		},
		{
			ID:                 "conv-3",
			Subject:            "Consulta sobre garantía",
			Participants:       []entities.Participant{luisa, laura},
			LastMessagePreview: "El producto tiene 12 meses de garantía.",
			LastMessageAt:      now.Add(-5 * time.Hour),
			UpdatedAt:          now.Add(-5 * time.Hour),
			Priority:           entities.PriorityNormal,
			Status:             entities.ConversationClosed,
			Tags:               []string{"postventa"},
			Channel:            "messenger",
			AssignedTo:         &laura,
			Messages: []entities.Message{
				mockMessage("msg-6", "conv-3", luisa.ID, "customer", "¿Cuál es la garantía del modelo X200?", "messenger", now.Add(-6*time.Hour), entities.DeliveryRead),
				mockMessage("msg-7", "conv-3", laura.ID, "agent", "Tiene 12 meses de garantía oficial.", "messenger", now.Add(-5*time.Hour), entities.DeliveryRead),
			},
		},
		{
			ID:                 "conv-4",
			Subject:            "Seguimiento de devolución",
			Participants:       []entities.Participant{maria, carlos},
			LastMessagePreview: "Tu devolución se procesó con éxito",
			LastMessageAt:      now.Add(-90 * time.Minute),
			UpdatedAt:          now.Add(-90 * time.Minute),
			UnreadCount:        1,
			Priority:           entities.PriorityHigh,
			Status:             entities.ConversationSnoozed,
			Tags:               []string{"devoluciones"},
			Channel:            "sms",
			AssignedTo:         &carlos,
			Messages: []entities.Message{
				mockMessage("msg-8", "conv-4", maria.ID, "customer", "Quería saber si recibieron el producto devuelto.", "sms", now.Add(-10*time.Hour), entities.DeliveryRead),
				mockMessage("msg-9", "conv-4", carlos.ID, "agent", "Sí, lo recibimos. Estamos procesando el reintegro.", "sms", now.Add(-3*time.Hour), entities.DeliveryRead),
			},
		},
	}
}

func mockMessage(id, conversationID, authorID, authorType, body, channel string, sentAt time.Time, delivery entities.DeliveryStatus) entities.Message {
	return entities.Message{
		ID:             id,
		ConversationID: conversationID,
		AuthorID:       authorID,
		AuthorType:     authorType,
		Body:           body,
		SentAt:         sentAt,
		UpdatedAt:      sentAt,
		Channel:        channel,
		DeliveryStatus: delivery,
	}
}
