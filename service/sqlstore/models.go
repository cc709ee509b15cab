package sqlstore

import (
	"encoding/json"
	"time"

	"github.com/rahulraut1220/LegalEase/model"
	"gorm.io/datatypes"
)

type UserModel struct {
	ID                   string `gorm:"primaryKey"`
	Name                 string `gorm:"not null"`
	Email                string `gorm:"not null;uniqueIndex"`
	PasswordHash         string `gorm:"not null"`
	Role                 string `gorm:"not null;index"`
	Phone                string
	Specialization       string
	BarAssociationNumber string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

func (UserModel) TableName() string { return "users" }

type ContractTypeModel struct {
	ID             string `gorm:"primaryKey"`
	Name           string `gorm:"not null;uniqueIndex"`
	Description    string
	RequiredFields datatypes.JSON `gorm:"type:json"`
	Template       string
	ValidityPeriod int `gorm:"not null;default:12"`
	CreatedAt      time.Time
}

func (ContractTypeModel) TableName() string { return "contract_types" }

type ContractModel struct {
	ID              string `gorm:"primaryKey"`
	ContractTypeID  string `gorm:"not null"`
	ClientID        string `gorm:"not null;index"`
	LawyerID        string `gorm:"not null;index"`
	ContractData    datatypes.JSON `gorm:"type:json"`
	Signature       *string
	Status          string `gorm:"not null;default:'pending'"`
	DocumentURL     *string
	ClientSigned    bool `gorm:"not null;default:false"`
	LawyerSigned    bool `gorm:"not null;default:false"`
	IssueDate       *time.Time
	ExpiryDate      *time.Time
	RejectionReason *string
	Version         int64 `gorm:"not null;default:1"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (ContractModel) TableName() string { return "contracts" }

func userFromModel(m UserModel) *model.User {
	return &model.User{
		ID:                   m.ID,
		Name:                 m.Name,
		Email:                m.Email,
		PasswordHash:         m.PasswordHash,
		Role:                 model.Role(m.Role),
		Phone:                m.Phone,
		Specialization:       m.Specialization,
		BarAssociationNumber: m.BarAssociationNumber,
		CreatedAt:            m.CreatedAt,
		UpdatedAt:            m.UpdatedAt,
	}
}

func userToModel(u *model.User) UserModel {
	return UserModel{
		ID:                   u.ID,
		Name:                 u.Name,
		Email:                u.Email,
		PasswordHash:         u.PasswordHash,
		Role:                 string(u.Role),
		Phone:                u.Phone,
		Specialization:       u.Specialization,
		BarAssociationNumber: u.BarAssociationNumber,
		CreatedAt:            u.CreatedAt,
		UpdatedAt:            u.UpdatedAt,
	}
}

func contractTypeFromModel(m ContractTypeModel) (*model.ContractType, error) {
	ct := &model.ContractType{
		ID:             m.ID,
		Name:           m.Name,
		Description:    m.Description,
		Template:       m.Template,
		ValidityPeriod: m.ValidityPeriod,
		CreatedAt:      m.CreatedAt,
	}
	if len(m.RequiredFields) > 0 {
		if err := json.Unmarshal(m.RequiredFields, &ct.RequiredFields); err != nil {
			return nil, err
		}
	}
	return ct, nil
}

func contractTypeToModel(ct *model.ContractType) (ContractTypeModel, error) {
	fields := ct.RequiredFields
	if fields == nil {
		fields = []model.Field{}
	}
	raw, err := json.Marshal(fields)
	if err != nil {
		return ContractTypeModel{}, err
	}
	return ContractTypeModel{
		ID:             ct.ID,
		Name:           ct.Name,
		Description:    ct.Description,
		RequiredFields: datatypes.JSON(raw),
		Template:       ct.Template,
		ValidityPeriod: ct.ValidityPeriod,
		CreatedAt:      ct.CreatedAt,
	}, nil
}

func contractFromModel(m ContractModel) (*model.Contract, error) {
	c := &model.Contract{
		ID:              m.ID,
		ContractTypeID:  m.ContractTypeID,
		ClientID:        m.ClientID,
		LawyerID:        m.LawyerID,
		Signature:       m.Signature,
		Status:          model.Status(m.Status),
		DocumentURL:     m.DocumentURL,
		ClientSigned:    m.ClientSigned,
		LawyerSigned:    m.LawyerSigned,
		IssueDate:       m.IssueDate,
		ExpiryDate:      m.ExpiryDate,
		RejectionReason: m.RejectionReason,
		Version:         m.Version,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
	c.ContractData = map[string]any{}
	if len(m.ContractData) > 0 {
		if err := json.Unmarshal(m.ContractData, &c.ContractData); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func contractData(c *model.Contract) (datatypes.JSON, error) {
	data := c.ContractData
	if data == nil {
		data = map[string]any{}
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

func contractToModel(c *model.Contract) (ContractModel, error) {
	data, err := contractData(c)
	if err != nil {
		return ContractModel{}, err
	}
	return ContractModel{
		ID:              c.ID,
		ContractTypeID:  c.ContractTypeID,
		ClientID:        c.ClientID,
		LawyerID:        c.LawyerID,
		ContractData:    data,
		Signature:       c.Signature,
		Status:          string(c.Status),
		DocumentURL:     c.DocumentURL,
		ClientSigned:    c.ClientSigned,
		LawyerSigned:    c.LawyerSigned,
		IssueDate:       c.IssueDate,
		ExpiryDate:      c.ExpiryDate,
		RejectionReason: c.RejectionReason,
		Version:         c.Version,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}, nil
}
