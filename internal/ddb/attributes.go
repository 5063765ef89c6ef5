package ddb

import (
	"encoding/base64"
	"encoding/json"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/cockroachdb/errors"
)

// UnmarshalJSON decodes a stream record whose images use the DynamoDB JSON
// attribute encoding ({"S": "..."}, {"M": {...}} and so on).
func (r *DynamoDBStreamRecord) UnmarshalJSON(data []byte) error {
	var raw struct {
		ApproximateCreationDateTime int64                      `json:"ApproximateCreationDateTime,omitempty"`
		Keys                        map[string]json.RawMessage `json:"Keys,omitempty"`
		NewImage                    map[string]json.RawMessage `json:"NewImage,omitempty"`
		OldImage                    map[string]json.RawMessage `json:"OldImage,omitempty"`
		SequenceNumber              string                     `json:"SequenceNumber"`
		SizeBytes                   int64                      `json:"SizeBytes"`
		StreamViewType              string                     `json:"StreamViewType"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	keys, err := decodeAttributeMap(raw.Keys)
	if err != nil {
		return errors.Wrap(err, "Keys")
	}
	newImage, err := decodeAttributeMap(raw.NewImage)
	if err != nil {
		return errors.Wrap(err, "NewImage")
	}
	oldImage, err := decodeAttributeMap(raw.OldImage)
	if err != nil {
		return errors.Wrap(err, "OldImage")
	}

	*r = DynamoDBStreamRecord{
		ApproximateCreationDateTime: raw.ApproximateCreationDateTime,
		Keys:                        keys,
		NewImage:                    newImage,
		OldImage:                    oldImage,
		SequenceNumber:              raw.SequenceNumber,
		SizeBytes:                   raw.SizeBytes,
		StreamViewType:              raw.StreamViewType,
	}
	return nil
}

// UnmarshalAttributeValueMap decodes a DynamoDB JSON object into an
// attribute value map.
func UnmarshalAttributeValueMap(data []byte) (map[string]types.AttributeValue, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal attribute map")
	}
	return decodeAttributeMap(raw)
}

// decodeAttributeMap returns nil for a nil input so absent images stay absent.
func decodeAttributeMap(raw map[string]json.RawMessage) (map[string]types.AttributeValue, error) {
	if raw == nil {
		return nil, nil
	}
	out := make(map[string]types.AttributeValue, len(raw))
	for k, v := range raw {
		av, err := decodeAttribute(v)
		if err != nil {
			return nil, errors.Wrapf(err, "attribute %q", k)
		}
		out[k] = av
	}
	return out, nil
}

func decodeAttribute(data json.RawMessage) (types.AttributeValue, error) {
	var typed map[string]json.RawMessage
	if err := json.Unmarshal(data, &typed); err != nil {
		return nil, errors.Wrap(err, "attribute is not an object")
	}
	if len(typed) != 1 {
		return nil, errors.Newf("attribute must have exactly one type, got %d", len(typed))
	}

	for kind, value := range typed {
		switch kind {
		case "S":
			var s string
			err := json.Unmarshal(value, &s)
			return &types.AttributeValueMemberS{Value: s}, err
		case "N":
			var n string
			err := json.Unmarshal(value, &n)
			return &types.AttributeValueMemberN{Value: n}, err
		case "B":
			var b string
			if err := json.Unmarshal(value, &b); err != nil {
				return nil, err
			}
			decoded, err := base64.StdEncoding.DecodeString(b)
			return &types.AttributeValueMemberB{Value: decoded}, err
		case "BOOL":
			var b bool
			err := json.Unmarshal(value, &b)
			return &types.AttributeValueMemberBOOL{Value: b}, err
		case "NULL":
			var b bool
			err := json.Unmarshal(value, &b)
			return &types.AttributeValueMemberNULL{Value: b}, err
		case "SS":
			var ss []string
			err := json.Unmarshal(value, &ss)
			return &types.AttributeValueMemberSS{Value: ss}, err
		case "NS":
			var ns []string
			err := json.Unmarshal(value, &ns)
			return &types.AttributeValueMemberNS{Value: ns}, err
		case "BS":
			var bs []string
			if err := json.Unmarshal(value, &bs); err != nil {
				return nil, err
			}
			out := make([][]byte, len(bs))
			for i, b := range bs {
				decoded, err := base64.StdEncoding.DecodeString(b)
				if err != nil {
					return nil, err
				}
				out[i] = decoded
			}
			return &types.AttributeValueMemberBS{Value: out}, nil
		case "M":
			var m map[string]json.RawMessage
			if err := json.Unmarshal(value, &m); err != nil {
				return nil, err
			}
			decoded, err := decodeAttributeMap(m)
			if err != nil {
				return nil, err
			}
			if decoded == nil {
				decoded = map[string]types.AttributeValue{}
			}
			return &types.AttributeValueMemberM{Value: decoded}, nil
		case "L":
			var l []json.RawMessage
			if err := json.Unmarshal(value, &l); err != nil {
				return nil, err
			}
			out := make([]types.AttributeValue, len(l))
			for i, item := range l {
				av, err := decodeAttribute(item)
				if err != nil {
					return nil, errors.Wrapf(err, "list item %d", i)
				}
				out[i] = av
			}
			return &types.AttributeValueMemberL{Value: out}, nil
		default:
			return nil, errors.Newf("unsupported attribute type %q", kind)
		}
	}
	return nil, nil
}
