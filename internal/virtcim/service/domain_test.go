package service

import (
	"context"
	"strings"
	"testing"

	golibvirt "github.com/digitalocean/go-libvirt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jimyag/virtcim/internal/virtcim/entity"
	"github.com/jimyag/virtcim/pkg/apierror"
	"github.com/jimyag/virtcim/pkg/device"
	"github.com/jimyag/virtcim/pkg/domain"
	"github.com/jimyag/virtcim/pkg/libvirt"
)

const kvmDomainXML = `<domain type="kvm">
  <name>vm1</name>
  <uuid>4dea22b3-1d52-d8f3-2516-782e98ab3fa0</uuid>
  <memory>1048576</memory>
  <currentMemory>524288</currentMemory>
  <vcpu>2</vcpu>
  <os><type>hvm</type><boot dev="hd"/></os>
  <devices>
    <emulator>/usr/bin/qemu-system-x86_64</emulator>
    <disk type="file" device="disk">
      <driver name="qemu" type="qcow2"/>
      <source file="/var/lib/libvirt/images/vm1.qcow2"/>
      <target dev="vda" bus="virtio"/>
    </disk>
    <interface type="bridge">
      <mac address="52:54:00:12:34:56"/>
      <source bridge="br0"/>
    </interface>
    <graphics type="vnc" port="5900"/>
  </devices>
</domain>`

func TestDescribeDomain(t *testing.T) {
	t.Parallel()
	ts := setupTestServices(t)

	ts.MockLibvirt.On("HasDomain", "vm1").Return(true, nil)
	ts.MockLibvirt.On("GetDomainXML", "vm1", golibvirt.DomainXMLFlags(0)).Return(kvmDomainXML, nil)
	ts.MockLibvirt.On("GetDomainInfo", "vm1").Return(&libvirt.DomainInfo{
		State:     golibvirt.DomainRunning,
		Memory:    524288,
		MaxMemory: 1048576,
		VCPUs:     2,
	}, nil)
	ts.MockLibvirt.On("GetDomainVcpus", "vm1", 2).Return([]device.VcpuInfo{{Number: 0}, {Number: 1, CPU: 3}}, nil)

	ts.Jobs.MarkMigrating("vm1")
	resp, err := ts.Domain.DescribeDomain(context.Background(), &entity.DomainRequest{Name: "vm1"})
	require.NoError(t, err)

	assert.Equal(t, domain.TypeKVM, resp.Domain.Type)
	assert.Equal(t, "KVM", resp.Class)
	assert.True(t, resp.Migrating)
	require.Len(t, resp.Domain.Vcpu, 2)
	assert.Equal(t, int32(3), resp.Domain.Vcpu[1].CPU)
	require.Len(t, resp.Domain.Memory, 1)
	assert.Equal(t, uint64(524288), resp.Domain.Memory[0].Size)
}

func TestDescribeDomain_NotFound(t *testing.T) {
	t.Parallel()
	ts := setupTestServices(t)
	ts.MockLibvirt.On("HasDomain", "vm1").Return(false, nil)

	_, err := ts.Domain.DescribeDomain(context.Background(), &entity.DomainRequest{Name: "vm1"})
	assert.ErrorIs(t, err, apierror.ErrNotFound)
}

func TestListDevices(t *testing.T) {
	t.Parallel()

	testcases := []struct {
		kind    string
		wantIDs []string
	}{
		{kind: "disk", wantIDs: []string{"host1/vda"}},
		{kind: "net", wantIDs: []string{"host1/52:54:00:12:34:56"}},
		{kind: "vcpu", wantIDs: []string{"host1/0", "host1/1"}},
		{kind: "", wantIDs: []string{
			"host1/vda",
			"host1/52:54:00:12:34:56",
			"host1/mem",
			"host1/0",
			"host1/1",
			"host1/emulator",
			"host1/vnc",
		}},
	}

	for _, tc := range testcases {
		t.Run("kind="+tc.kind, func(t *testing.T) {
			t.Parallel()
			ts := setupTestServices(t)
			ts.MockLibvirt.On("GetDomainXML", "vm1", golibvirt.DomainXMLFlags(0)).Return(kvmDomainXML, nil)
			ts.MockLibvirt.On("GetHostname").Return("host1", nil)

			resp, err := ts.Domain.ListDevices(context.Background(), &entity.ListDevicesRequest{Domain: "vm1", Kind: tc.kind})
			require.NoError(t, err)

			ids := make([]string, 0, len(resp.Devices))
			for _, d := range resp.Devices {
				ids = append(ids, d.ID)
			}
			assert.Equal(t, tc.wantIDs, ids)
		})
	}
}

func TestAttachDevice(t *testing.T) {
	t.Parallel()

	t.Run("disk", func(t *testing.T) {
		t.Parallel()
		ts := setupTestServices(t)
		ts.MockLibvirt.On("HasDomain", "vm1").Return(true, nil)
		ts.MockLibvirt.On("AttachDevice", "vm1", mock.MatchedBy(func(xml string) bool {
			return strings.Contains(xml, `dev="vdb"`) && strings.Contains(xml, "/data/disk.img")
		})).Return(nil)

		err := ts.Domain.AttachDevice(context.Background(), &entity.DeviceRequest{
			Domain: "vm1",
			Device: entity.DeviceSpec{Kind: "disk", Source: "/data/disk.img", Target: "vdb", DiskType: "file"},
		})
		require.NoError(t, err)
		ts.MockLibvirt.AssertExpectations(t)
	})

	t.Run("vcpu", func(t *testing.T) {
		t.Parallel()
		ts := setupTestServices(t)
		ts.MockLibvirt.On("HasDomain", "vm1").Return(true, nil)
		ts.MockLibvirt.On("GetDomainInfo", "vm1").Return(&libvirt.DomainInfo{VCPUs: 2}, nil)
		ts.MockLibvirt.On("SetVcpus", "vm1", uint32(3)).Return(nil)

		err := ts.Domain.AttachDevice(context.Background(), &entity.DeviceRequest{Domain: "vm1", Device: entity.DeviceSpec{Kind: "vcpu"}})
		require.NoError(t, err)
		ts.MockLibvirt.AssertExpectations(t)
	})

	t.Run("graphics not supported", func(t *testing.T) {
		t.Parallel()
		ts := setupTestServices(t)
		ts.MockLibvirt.On("HasDomain", "vm1").Return(true, nil)

		err := ts.Domain.AttachDevice(context.Background(), &entity.DeviceRequest{Domain: "vm1", Device: entity.DeviceSpec{Kind: "graphics"}})
		assert.ErrorIs(t, err, apierror.ErrNotSupported)
	})
}

func TestDetachDevice(t *testing.T) {
	t.Parallel()

	testcases := []struct {
		name    string
		spec    entity.DeviceSpec
		wantErr *apierror.Error
		want    string
	}{
		{
			name: "disk by fq id",
			spec: entity.DeviceSpec{Kind: "disk", ID: "host1/vda"},
			want: `dev="vda"`,
		},
		{
			name: "net by mac",
			spec: entity.DeviceSpec{Kind: "net", MAC: "52:54:00:12:34:56"},
			want: `52:54:00:12:34:56`,
		},
		{
			name:    "missing disk",
			spec:    entity.DeviceSpec{Kind: "disk", ID: "vdz"},
			wantErr: apierror.ErrNotFound,
		},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			ts := setupTestServices(t)
			ts.MockLibvirt.On("HasDomain", "vm1").Return(true, nil)
			ts.MockLibvirt.On("GetDomainXML", "vm1", golibvirt.DomainXMLFlags(0)).Return(kvmDomainXML, nil)
			ts.MockLibvirt.On("DetachDevice", "vm1", mock.AnythingOfType("string")).Return(nil).Maybe()

			err := ts.Domain.DetachDevice(context.Background(), &entity.DeviceRequest{Domain: "vm1", Device: tc.spec})
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				ts.MockLibvirt.AssertNotCalled(t, "DetachDevice", mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			xml := ts.MockLibvirt.Calls[len(ts.MockLibvirt.Calls)-1].Arguments.String(1)
			assert.Contains(t, xml, tc.want)
		})
	}
}

func TestChangeDevice(t *testing.T) {
	t.Parallel()

	t.Run("mem", func(t *testing.T) {
		t.Parallel()
		ts := setupTestServices(t)
		ts.MockLibvirt.On("HasDomain", "vm1").Return(true, nil)
		ts.MockLibvirt.On("SetMaxMemory", "vm1", uint64(2097152)).Return(nil).Once()
		ts.MockLibvirt.On("SetMemory", "vm1", uint64(1048576)).Return(nil).Once()

		err := ts.Domain.ChangeDevice(context.Background(), &entity.DeviceRequest{
			Domain: "vm1",
			Device: entity.DeviceSpec{Kind: "mem", Memory: 1048576, MaxMemory: 2097152},
		})
		require.NoError(t, err)
		ts.MockLibvirt.AssertExpectations(t)
	})

	t.Run("mem exceeds max", func(t *testing.T) {
		t.Parallel()
		ts := setupTestServices(t)
		ts.MockLibvirt.On("HasDomain", "vm1").Return(true, nil)

		err := ts.Domain.ChangeDevice(context.Background(), &entity.DeviceRequest{
			Domain: "vm1",
			Device: entity.DeviceSpec{Kind: "mem", Memory: 4, MaxMemory: 2},
		})
		assert.ErrorIs(t, err, apierror.ErrInvalidParameter)
	})

	t.Run("vcpu", func(t *testing.T) {
		t.Parallel()
		ts := setupTestServices(t)
		ts.MockLibvirt.On("HasDomain", "vm1").Return(true, nil)
		ts.MockLibvirt.On("SetVcpus", "vm1", uint32(4)).Return(nil)

		err := ts.Domain.ChangeDevice(context.Background(), &entity.DeviceRequest{Domain: "vm1", Device: entity.DeviceSpec{Kind: "vcpu", Vcpus: 4}})
		require.NoError(t, err)
	})
}
