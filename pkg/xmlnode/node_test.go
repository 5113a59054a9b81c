package xmlnode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDomain = `<domain type='kvm'>
  <name>vm1</name>
  <vcpu> </vcpu>
  <devices>
    <disk type='file' device='disk'><target dev='vda'/></disk>
    <interface type='bridge'/>
    <disk type='block' device='disk'><target dev='vdb'/></disk>
  </devices>
</domain>`

func TestParse(t *testing.T) {
	t.Parallel()

	testcases := []struct {
		name    string
		doc     string
		wantErr bool
	}{
		{name: "valid document", doc: sampleDomain},
		{name: "empty document", doc: "   ", wantErr: true},
		{name: "not xml", doc: "snarf", wantErr: true},
		{name: "unterminated", doc: "<domain><name>", wantErr: true},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			root, err := Parse(tc.doc)
			if tc.wantErr {
				assert.Error(t, err)
				assert.Nil(t, root)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "domain", root.Name())
		})
	}
}

func TestNodeAccessors(t *testing.T) {
	t.Parallel()

	root, err := Parse(sampleDomain)
	require.NoError(t, err)

	typ, ok := root.Attr("type")
	assert.True(t, ok)
	assert.Equal(t, "kvm", typ)

	_, ok = root.Attr("id")
	assert.False(t, ok, "missing attribute is absent, not an error")

	name, ok := root.ChildText("name")
	assert.True(t, ok)
	assert.Equal(t, "vm1", name)

	_, ok = root.ChildText("vcpu")
	assert.False(t, ok, "whitespace-only content is absent")

	_, ok = root.ChildText("uuid")
	assert.False(t, ok)

	var nilNode *Node
	_, ok = nilNode.Attr("type")
	assert.False(t, ok)
	assert.Empty(t, nilNode.Children("disk"))
	assert.Nil(t, nilNode.Child("disk"))
}

func TestNodeSelect(t *testing.T) {
	t.Parallel()

	root, err := Parse(sampleDomain)
	require.NoError(t, err)

	disks := root.Select("/domain/devices/disk")
	require.Len(t, disks, 2)
	assert.Equal(t, "vda", disks[0].Child("target").AttrValue("dev"))
	assert.Equal(t, "vdb", disks[1].Child("target").AttrValue("dev"))

	assert.Len(t, root.Select("/domain/devices/interface"), 1)
	assert.Empty(t, root.Select("/domain/devices/graphics"))
	assert.Empty(t, root.Select("/pool/target"))
	assert.Len(t, root.Select("/domain"), 1)
}

func TestNodeZeroValue(t *testing.T) {
	t.Parallel()

	var zero Node
	assert.Equal(t, "", zero.Name())
	_, ok := zero.Attr("type")
	assert.False(t, ok)
	_, ok = zero.Text()
	assert.False(t, ok)
	assert.Nil(t, zero.Elements())
	assert.Nil(t, zero.Select("/domain"))
}

func TestNodeNamespacedAttr(t *testing.T) {
	t.Parallel()

	root, err := Parse(`<domain xmlns:qemu='http://libvirt.org/schemas/domain/qemu/1.0' qemu:id='7'><name>vm1</name></domain>`)
	require.NoError(t, err)

	id, ok := root.Attr("id")
	assert.True(t, ok)
	assert.Equal(t, "7", id)

	assert.Nil(t, root.Select("domain/name"), "relative paths are rejected")
	require.Len(t, root.Elements(), 1)
	assert.Equal(t, "name", root.Elements()[0].Name())
}
