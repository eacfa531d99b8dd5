package services

import (
	"time"

	"github.com/filoshare/backend/internal/models"
	"gorm.io/gorm"
)

// ChatService is the room/message store behind both the REST endpoints
// and the websocket gateway
type ChatService struct {
	db *gorm.DB
}

func NewChatService(db *gorm.DB) *ChatService {
	return &ChatService{db: db}
}

// GetOrCreateRoom looks up the room for an unordered user pair, creating
// it on first contact. The pair key is normalized and uniquely indexed,
// so two racing first contacts converge on one room: the loser's insert
// fails and it re-reads the winner's row.
func (s *ChatService) GetOrCreateRoom(userID, otherUserID uint) (*models.ChatRoom, error) {
	if userID == otherUserID {
		return nil, ErrSameUser
	}

	var other models.User
	if err := s.db.First(&other, otherUserID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}

	a, b, pairKey := models.NormalizePair(userID, otherUserID)

	var room models.ChatRoom
	err := s.db.Where("pair_key = ?", pairKey).First(&room).Error
	if err == nil {
		return &room, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	room = models.ChatRoom{MemberA: a, MemberB: b, PairKey: pairKey}
	if createErr := s.db.Create(&room).Error; createErr != nil {
		// Lost the race: the unique index rejected the duplicate
		if refetchErr := s.db.Where("pair_key = ?", pairKey).First(&room).Error; refetchErr != nil {
			return nil, createErr
		}
	}

	return &room, nil
}

// RoomForMember fetches a room and enforces membership
func (s *ChatService) RoomForMember(roomID, userID uint) (*models.ChatRoom, error) {
	var room models.ChatRoom
	if err := s.db.First(&room, roomID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !room.HasMember(userID) {
		return nil, ErrNotRoomMember
	}
	return &room, nil
}

// SaveMessage persists a message and touches the room's activity
// timestamp. The activity touch only happens after a successful write.
func (s *ChatService) SaveMessage(roomID, senderID uint, text string) (*models.Message, error) {
	msg := &models.Message{
		RoomID:   roomID,
		SenderID: senderID,
		Text:     text,
	}
	if err := s.db.Create(msg).Error; err != nil {
		return nil, err
	}

	if err := s.db.Model(&models.ChatRoom{}).
		Where("id = ?", roomID).
		UpdateColumn("updated_at", time.Now()).Error; err != nil {
		return nil, err
	}

	return msg, nil
}

// ListMessages replays a room's history in creation order
func (s *ChatService) ListMessages(roomID uint) ([]models.Message, error) {
	var messages []models.Message
	err := s.db.Where("room_id = ?", roomID).
		Order("created_at asc, id asc").
		Find(&messages).Error
	return messages, err
}

// ListRoomsForUser returns the user's rooms, most recent activity first,
// with member profiles attached
func (s *ChatService) ListRoomsForUser(userID uint) ([]models.ChatRoom, error) {
	var rooms []models.ChatRoom
	err := s.db.Where("member_a = ? OR member_b = ?", userID, userID).
		Order("updated_at desc").
		Find(&rooms).Error
	if err != nil {
		return nil, err
	}

	for i := range rooms {
		var members []models.User
		if err := s.db.Where("id IN ?", []uint{rooms[i].MemberA, rooms[i].MemberB}).Find(&members).Error; err != nil {
			return nil, err
		}
		rooms[i].Members = make([]models.PublicUser, 0, len(members))
		for _, m := range members {
			rooms[i].Members = append(rooms[i].Members, m.Public())
		}
	}

	return rooms, nil
}
