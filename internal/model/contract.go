package model

type ContractType string

const (
	ContractTypeTOS     ContractType = "tos"
	ContractTypeSLA     ContractType = "sla"
	ContractTypeDPA     ContractType = "dpa"
	ContractTypePrivacy ContractType = "privacy"
	ContractTypeOther   ContractType = "other"
)

func (t ContractType) Valid() bool {
	switch t {
	case ContractTypeTOS, ContractTypeSLA, ContractTypeDPA, ContractTypePrivacy, ContractTypeOther:
		return true
	}
	return false
}

type Contract struct {
	ID           string       `json:"id"`
	Vendor       string       `json:"vendor"`
	ContractType ContractType `json:"contract_type"`
	SourceURL    string       `json:"source_url,omitempty"`
	Watch        int          `json:"watch"`
	Ctime        int64        `json:"ctime"`
	Mtime        int64        `json:"mtime"`
}
