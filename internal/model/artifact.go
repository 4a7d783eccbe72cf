package model

import "encoding/json"

// ArtifactStatus 合规对象的可见性生命周期：草稿仅所有者可见，
// 发布后全员可见，指派状态仅对指派名单内的用户可见。
type ArtifactStatus string

const (
	ArtifactDraft     ArtifactStatus = "draft"
	ArtifactPublished ArtifactStatus = "published"
	ArtifactAssigned  ArtifactStatus = "assigned"
)

// ContainsUser 判断 JSON 数组形式的指派名单中是否包含该用户。
func ContainsUser(assigned json.RawMessage, userID uint) bool {
	if len(assigned) == 0 {
		return false
	}
	var ids []uint
	if err := json.Unmarshal(assigned, &ids); err != nil {
		return false
	}
	for _, id := range ids {
		if id == userID {
			return true
		}
	}
	return false
}

// MarshalUserIDs 序列化指派名单，nil 输入得到空数组而不是 null。
func MarshalUserIDs(ids []uint) json.RawMessage {
	if ids == nil {
		ids = []uint{}
	}
	raw, _ := json.Marshal(ids)
	return raw
}
